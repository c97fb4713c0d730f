// Package main provides the trackerd entry point: a demo/reference
// deployment of the pointing control core running against a simulated
// mount and a synthesized satellite-like pass, with its REST API, live
// telemetry WebSocket, and time-series sink all wired up.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/api/rest"
	"github.com/darkdragonsastro/trackcore/internal/api/websocket"
	"github.com/darkdragonsastro/trackcore/internal/catalog"
	"github.com/darkdragonsastro/trackcore/internal/database"
	"github.com/darkdragonsastro/trackcore/internal/device"
	"github.com/darkdragonsastro/trackcore/internal/errorsource"
	"github.com/darkdragonsastro/trackcore/internal/eventbus"
	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
	"github.com/darkdragonsastro/trackcore/internal/pid"
	"github.com/darkdragonsastro/trackcore/internal/target"
	"github.com/darkdragonsastro/trackcore/internal/telem"
	"github.com/darkdragonsastro/trackcore/internal/tracker"
)

// Version information (set during build).
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Config holds server configuration.
type Config struct {
	Port        int           `json:"port"`
	Host        string        `json:"host"`
	DataDir     string        `json:"data_dir"`
	Debug       bool          `json:"debug"`
	TelemPeriod time.Duration `json:"telem_period"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:        8080,
		Host:        "0.0.0.0",
		DataDir:     "./data",
		Debug:       true,
		TelemPeriod: time.Second,
	}
}

func main() {
	fmt.Printf("trackerd %s (built %s)\n", Version, BuildTime)
	fmt.Println("==========================================")

	config := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		log.Fatalf("trackerd error: %v", err)
	}

	log.Println("trackerd stopped")
}

func run(ctx context.Context, config Config) error {
	bus := eventbus.NewInMemoryBus()
	db := database.NewInMemoryDB(10000)

	// Star catalog, for named-target lookup and the REST catalog endpoint.
	starCatalog := catalog.NewHipparcosCatalog()
	if err := starCatalog.Load(ctx); err != nil {
		log.Printf("warning: failed to load star catalog: %v", err)
	}
	catalog.InitializeStarNames(starCatalog)
	log.Printf("loaded %d stars", starCatalog.Count())

	// Mount model parameter store, for persisting fitted models across runs.
	paramStore := device.NewParamStore(config.DataDir)

	loc := mountmodel.Location{LatitudeDeg: 34.0522, LongitudeDeg: -118.2437, ElevationM: 100}
	params := mountmodel.Parameters{}
	if active, err := paramStore.Active(); err == nil {
		params = active.ParamSet.Params
		loc = active.ParamSet.Location
	}
	model := mountmodel.New(params, loc)

	// Simulated mount and a synthesized overhead pass to track.
	mnt := mount.NewSimMount(mount.DefaultSimMountConfig(), mount.Axes[float64]{0, 90})

	now := time.Now().UTC()
	passTarget := target.NewSimulatedPassTarget(
		mountmodel.SkyCoord{RADeg: 10, DecDeg: 45},
		mountmodel.SkyCoord{RADeg: 15, DecDeg: 50},
		now,
		now.Add(10*time.Minute),
	)

	source := errorsource.NewBlindErrorSource(mnt, model, passTarget, mountmodel.East)

	gains := pid.FromBandwidth(0.5, 0.9, 0, 200*time.Millisecond)
	pid0, err := pid.New(gains, 2*time.Second, nil, nil)
	if err != nil {
		return fmt.Errorf("build axis0 controller: %w", err)
	}
	pid1, err := pid.New(gains, 2*time.Second, nil, nil)
	if err != nil {
		return fmt.Errorf("build axis1 controller: %w", err)
	}

	cfg := tracker.DefaultConfig()
	cfg.StopWhenConverged = false
	cfg.StopOnTimer = true
	cfg.MaxRunTime = 10 * time.Minute

	trk := tracker.New(mnt, source, mount.Axes[*pid.Controller]{pid0, pid1}, cfg, nil)
	trk.Events = bus

	sub, err := bus.Subscribe(ctx, tracker.TopicStopped, func(e eventbus.Event) {
		log.Printf("tracker stopped: %+v", e.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to tracker events: %w", err)
	}
	defer bus.Unsubscribe(ctx, sub)

	// Telemetry fan-out: an in-memory time-series sink and a live WebSocket feed.
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	publisher := telem.NewPublisher(trk, config.TelemPeriod, nil)
	publisher.AddSink(telem.NewDatabaseSink(db, "telemetry"))
	publisher.AddSink(telem.NewWebSocketSink(wsHub, "telemetry"))
	go publisher.Run(ctx)

	go trk.Run(ctx)

	restConfig := rest.Config{
		Address: fmt.Sprintf("%s:%d", config.Host, config.Port),
		Debug:   config.Debug,
	}
	server := rest.NewServer(restConfig, trk, paramStore, starCatalog, wsHub)

	log.Printf("starting server on %s:%d", config.Host, config.Port)
	log.Println("API endpoints:")
	log.Println("  GET  /api/v1/health              - Health check")
	log.Println("  GET  /api/v1/tracker/status       - Tracker status")
	log.Println("  GET  /api/v1/tracker/telemetry    - Latest telemetry snapshot")
	log.Println("  POST /api/v1/tracker/start        - Start the control loop")
	log.Println("  POST /api/v1/tracker/stop         - Stop the control loop")
	log.Println("  GET  /api/v1/model/paramsets       - List fitted mount models")
	log.Println("  POST /api/v1/model/fit             - Fit a new mount model")
	log.Println("  GET  /api/v1/catalog/stars/:name    - Resolve a named star")
	log.Println("  GET  /api/v1/ephemeris/moon          - Moon position/phase")
	log.Println("  GET  /api/v1/ephemeris/twilight      - Twilight times and moon phase")
	log.Println("  GET  /ws                             - Live telemetry feed")

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(restConfig.Address); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		trk.Stop()
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
