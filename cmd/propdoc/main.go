package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/introspect/internal/config"
	"github.com/zeusync/introspect/internal/core/fields"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/schema/registry"
	"github.com/zeusync/introspect/internal/injector"
	"github.com/zeusync/introspect/internal/sim/sensors"
	"github.com/zeusync/introspect/internal/sim/vehicles"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file")
	docsPath := flag.String("docs", "", "HTML documentation output (overrides config)")
	snapshotPath := flag.String("snapshot", "", "snapshot document output (overrides config)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *docsPath, *snapshotPath); err != nil {
		fmt.Fprintln(os.Stderr, "propdoc:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, docsPath, snapshotPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if docsPath != "" {
		cfg.Export.DocsPath = docsPath
	}
	if snapshotPath != "" {
		cfg.Export.SnapshotPath = snapshotPath
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	reg, logger := app.Registry, app.Logger
	defer func() { _ = logger.Sync() }()

	fleet, err := populate(reg, logger, cfg.Export.Population)
	if err != nil {
		return err
	}
	fleet.Step(time.Second)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeFile(ctx, cfg.Export.DocsPath, reg.WriteDocumentation)
	})
	g.Go(func() error {
		return writeFile(ctx, cfg.Export.SnapshotPath, reg.Export)
	})
	if err = g.Wait(); err != nil {
		return err
	}

	logger.Info("export complete",
		log.Int("objects", len(reg.GetFullPropertySnapshot())),
		log.String("docs", cfg.Export.DocsPath),
		log.String("snapshot", cfg.Export.SnapshotPath))
	return nil
}

// populate installs the reference providers and spawns n vehicles, each with a
// front camera.
func populate(reg *registry.Registry, logger log.Log, n int) (*vehicles.Manager, error) {
	fleet := vehicles.NewManager(logger)
	sensorManager := sensors.NewManager(logger)
	cameras := sensors.NewCameraFactory(sensorManager)

	for _, install := range []func(*registry.Registry) error{fleet.Register, sensorManager.Register, cameras.Register} {
		if err := install(reg); err != nil {
			return nil, fmt.Errorf("install providers: %w", err)
		}
	}

	for i := 0; i < n; i++ {
		vid := fleet.Spawn(fmt.Sprintf("Rover %d", i+1), fields.Vector3{X: float64(10 * i)}, fmt.Sprintf("10.0.0.%d", i+5))
		v, _ := fleet.Vehicle(vid)
		if err := reg.SetPropertyByName(v.Controller, "Desired Speed", "1.5"); err != nil {
			return nil, err
		}
		cameras.Create(vid, fmt.Sprintf("Rover %d Front Camera", i+1), fields.Coordinate{System: fields.Local, X: 1.8, Z: 1.4})
	}
	return fleet, nil
}

func writeFile(ctx context.Context, path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err = write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
