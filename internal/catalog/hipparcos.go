package catalog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// HipparcosCatalog implements StarCatalog over the Hipparcos catalog
// (~118,218 stars). It resolves stars only by name: the control core has
// no use for cone search or spatial indexing, so neither is built.
type HipparcosCatalog struct {
	mu sync.RWMutex

	// stars holds all stars indexed by HIP number.
	stars map[int]*Star

	// starList is a sorted slice for iteration and export.
	starList []Star

	// loaded indicates whether the catalog has been loaded.
	loaded bool

	// namedStars maps common names to HIP numbers.
	namedStars map[string]int
}

// NewHipparcosCatalog creates a new Hipparcos catalog instance.
// The catalog must be loaded before use via Load() or LoadFromFile().
func NewHipparcosCatalog() *HipparcosCatalog {
	return &HipparcosCatalog{
		stars:      make(map[int]*Star),
		namedStars: make(map[string]int),
	}
}

// Name returns the catalog name.
func (h *HipparcosCatalog) Name() string {
	return "Hipparcos"
}

// IsLoaded returns true if the catalog has been loaded.
func (h *HipparcosCatalog) IsLoaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded
}

// Count returns the total number of stars in the catalog.
func (h *HipparcosCatalog) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.starList)
}

// Load loads the catalog from embedded data, the preferred path for
// zero-dependency deployment.
func (h *HipparcosCatalog) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return nil
	}

	if len(embeddedHipparcosData) > 0 {
		return h.loadFromBinaryData(embeddedHipparcosData)
	}

	return fmt.Errorf("no embedded catalog data available, use LoadFromFile()")
}

// LoadFromFile loads the catalog from an ASCII file (hip_main.dat format).
// This is useful for development, testing, and catalog-gen.
func (h *HipparcosCatalog) LoadFromFile(ctx context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	return h.loadFromReader(ctx, f)
}

// LoadFromBinaryFile loads the catalog from a compressed binary file.
func (h *HipparcosCatalog) LoadFromBinaryFile(ctx context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read binary catalog: %w", err)
	}

	return h.loadFromBinaryData(data)
}

// loadFromReader parses the Hipparcos ASCII format (hip_main.dat).
// Format documented at: https://cdsarc.cds.unistra.fr/viz-bin/ReadMe/I/239
func (h *HipparcosCatalog) loadFromReader(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)

	h.stars = make(map[int]*Star, 120000)
	h.starList = make([]Star, 0, 120000)

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		if lineNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		line := scanner.Text()
		if len(line) < 78 {
			continue // skip short lines
		}

		star, err := parseHipLine(line)
		if err != nil {
			continue // skip invalid lines rather than failing
		}

		h.stars[star.HIP] = &star
		h.starList = append(h.starList, star)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	h.loaded = true
	return nil
}

// loadFromBinaryData loads from the compressed binary format written by
// ExportBinary.
func (h *HipparcosCatalog) loadFromBinaryData(data []byte) error {
	var reader io.Reader = bytes.NewReader(data)

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			return fmt.Errorf("decompress catalog: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	}

	buf := bufio.NewReader(reader)

	var numStars uint32
	if err := binary.Read(buf, binary.LittleEndian, &numStars); err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	h.stars = make(map[int]*Star, numStars)
	h.starList = make([]Star, 0, numStars)

	for i := uint32(0); i < numStars; i++ {
		star, err := readBinaryStar(buf)
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read star %d: %w", i, err)
		}

		h.stars[star.HIP] = &star
		h.starList = append(h.starList, star)
	}

	h.loaded = true
	return nil
}

// parseHipLine parses a line from hip_main.dat; the Hipparcos main
// catalog uses fixed-width columns.
func parseHipLine(line string) (Star, error) {
	var star Star

	if len(line) < 14 {
		return star, fmt.Errorf("line too short")
	}
	hip, err := strconv.Atoi(strings.TrimSpace(line[8:14]))
	if err != nil {
		return star, fmt.Errorf("parse HIP: %w", err)
	}
	star.HIP = hip

	if len(line) >= 63 {
		if ra, err := strconv.ParseFloat(strings.TrimSpace(line[51:63]), 64); err == nil {
			star.RA = ra
		}
	}
	if len(line) >= 76 {
		if dec, err := strconv.ParseFloat(strings.TrimSpace(line[64:76]), 64); err == nil {
			star.Dec = dec
		}
	}
	if len(line) >= 86 {
		if plx, err := strconv.ParseFloat(strings.TrimSpace(line[79:86]), 64); err == nil {
			star.Parallax = plx
		}
	}
	if len(line) >= 95 {
		if pmra, err := strconv.ParseFloat(strings.TrimSpace(line[87:95]), 64); err == nil {
			star.ProperMotionRA = pmra
		}
	}
	if len(line) >= 104 {
		if pmdec, err := strconv.ParseFloat(strings.TrimSpace(line[96:104]), 64); err == nil {
			star.ProperMotionDec = pmdec
		}
	}
	if len(line) >= 46 {
		if vmag, err := strconv.ParseFloat(strings.TrimSpace(line[41:46]), 64); err == nil {
			star.VMag = vmag
		}
	}
	if len(line) >= 251 {
		if bv, err := strconv.ParseFloat(strings.TrimSpace(line[245:251]), 64); err == nil {
			star.BV = bv
		}
	}
	if len(line) >= 447 {
		star.SpectralType = strings.TrimSpace(line[435:447])
	}

	return star, nil
}

// readBinaryStar reads a star from binary format (28 bytes):
// HIP int32, RA float64, Dec float64, VMag float32, BV float32.
func readBinaryStar(r io.Reader) (Star, error) {
	var star Star
	var hip int32
	var vmag, bv float32

	if err := binary.Read(r, binary.LittleEndian, &hip); err != nil {
		return star, err
	}
	if err := binary.Read(r, binary.LittleEndian, &star.RA); err != nil {
		return star, err
	}
	if err := binary.Read(r, binary.LittleEndian, &star.Dec); err != nil {
		return star, err
	}
	if err := binary.Read(r, binary.LittleEndian, &vmag); err != nil {
		return star, err
	}
	if err := binary.Read(r, binary.LittleEndian, &bv); err != nil {
		return star, err
	}

	star.HIP = int(hip)
	star.VMag = float64(vmag)
	star.BV = float64(bv)

	return star, nil
}

// GetByName returns a star by its common name.
func (h *HipparcosCatalog) GetByName(ctx context.Context, name string) (*Star, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.loaded {
		return nil, ErrCatalogNotLoaded
	}

	hip, ok := h.namedStars[strings.ToLower(name)]
	if !ok {
		return nil, ErrObjectNotFound
	}

	return h.stars[hip], nil
}

// AddStarName associates a common name with a HIP number. Called during
// catalog initialization to populate named stars.
func (h *HipparcosCatalog) AddStarName(name string, hip int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.namedStars[strings.ToLower(name)] = hip

	if star, ok := h.stars[hip]; ok {
		if star.Name == "" {
			star.Name = name
		}
	}
}

// ExportBinary exports the catalog to compressed binary format, used by
// cmd/catalog-gen to produce the embedded data file.
func (h *HipparcosCatalog) ExportBinary(w io.Writer) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.loaded {
		return ErrCatalogNotLoaded
	}

	gzw := gzip.NewWriter(w)
	defer gzw.Close()

	numStars := uint32(len(h.starList))
	if err := binary.Write(gzw, binary.LittleEndian, numStars); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, star := range h.starList {
		if err := writeBinaryStar(gzw, star); err != nil {
			return fmt.Errorf("write star %d: %w", star.HIP, err)
		}
	}

	return nil
}

// writeBinaryStar writes a star in binary format.
func writeBinaryStar(w io.Writer, star Star) error {
	if err := binary.Write(w, binary.LittleEndian, int32(star.HIP)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, star.RA); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, star.Dec); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, float32(star.VMag)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, float32(star.BV)); err != nil {
		return err
	}
	return nil
}

// embeddedHipparcosData holds pre-compiled catalog data, populated by
// embedded.go's go:embed directive once a data file exists.
var embeddedHipparcosData []byte

// SetEmbeddedData sets the embedded catalog data.
func SetEmbeddedData(data []byte) {
	embeddedHipparcosData = data
}
