// catalog-gen downloads the Hipparcos star catalog from CDS Strasbourg,
// parses its ASCII format, and writes a compressed binary file suitable
// for go:embed-ing into the trackcore binary (see internal/catalog/embedded.go).
//
// Usage:
//
//	go run ./cmd/catalog-gen -out internal/catalog/data/hipparcos.bin.gz
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/catalog"
)

const defaultHipparcosURL = "https://cdsarc.cds.unistra.fr/ftp/cats/I/239/hip_main.dat"

func main() {
	url := flag.String("url", defaultHipparcosURL, "source URL for the Hipparcos ASCII catalog (hip_main.dat)")
	out := flag.String("out", "internal/catalog/data/hipparcos.bin.gz", "output path for the compressed binary catalog")
	timeout := flag.Duration("timeout", 5*time.Minute, "HTTP download timeout")
	flag.Parse()

	if err := run(context.Background(), *url, *out, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-gen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, url, outPath string, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	datPath, err := fetchCatalog(ctx, url, timeout)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	defer os.Remove(datPath)

	fmt.Println("parsing Hipparcos ASCII catalog...")
	stars := catalog.NewHipparcosCatalog()
	if err := stars.LoadFromFile(ctx, datPath); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	fmt.Printf("loaded %d stars\n", stars.Count())

	fmt.Printf("writing binary catalog to %s...\n", outPath)
	if err := writeBinary(stars, outPath); err != nil {
		return fmt.Errorf("write binary: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}
	fmt.Printf("done: %d stars, %.2f MB -> %s\n", stars.Count(), float64(info.Size())/(1024*1024), outPath)
	return nil
}

// fetchCatalog downloads url to a temporary file and returns its path.
func fetchCatalog(ctx context.Context, url string, timeout time.Duration) (string, error) {
	fmt.Printf("downloading %s...\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "hip_main_*.dat")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download body: %w", err)
	}
	fmt.Printf("downloaded %d bytes\n", written)

	return tmp.Name(), nil
}

// writeBinary exports hip's loaded stars in trackcore's compressed binary
// format to path.
func writeBinary(hip *catalog.HipparcosCatalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	return hip.ExportBinary(f)
}
