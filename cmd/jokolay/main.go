// jokolay is an always-on-top transparent overlay for Guild Wars 2: it
// reads live game state over Mumble Link, loads marker/trail packages, and
// projects them into screen space for an external renderer to draw.
//
// Usage:
//
//	jokolay [flags]
//
// Flags:
//
//	-config string        Path to configuration file (default: XDG search path)
//	-packages string       Directory of package archives/folders to load
//	-mumble-name string    Mumble Link shared-memory segment name
//	-verbose               Enable verbose logging
//	-version                Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jokolay/jokolay/internal/component"
	"github.com/jokolay/jokolay/internal/config"
	"github.com/jokolay/jokolay/internal/jklog"
	"github.com/jokolay/jokolay/internal/mumble"
	"github.com/jokolay/jokolay/internal/overlaywin"
	"github.com/jokolay/jokolay/internal/pack/data"
	"github.com/jokolay/jokolay/internal/pack/ingest"
	"github.com/jokolay/jokolay/internal/pack/ui"
	"github.com/jokolay/jokolay/internal/render"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		packagesDir = flag.String("packages", "", "Directory of package archives/folders to load (default: config Package.SearchPaths)")
		mumbleName  = flag.String("mumble-name", "", "Mumble Link shared-memory segment name (default: config Mumble.SegmentName)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("jokolay %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := jklog.New(*verbose, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	segmentName := cfg.Mumble.SegmentName
	if *mumbleName != "" {
		segmentName = *mumbleName
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	dataMgr := data.NewManager(logger, cfg.Package.DataDir)

	searchDirs := cfg.Package.SearchPaths
	if *packagesDir != "" {
		searchDirs = []string{*packagesDir}
	}
	loadPackages(logger, dataMgr, searchDirs)

	registry := buildRegistry(logger, segmentName, dataMgr, int32(cfg.Overlay.MinWidth), int32(cfg.Overlay.MinHeight))

	plan, err := registry.BuildRoutes()
	if err != nil {
		logger.Error("component graph invalid", "error", err)
		os.Exit(1)
	}

	uiExec, err := plan.Executor(component.WorldUI)
	if err != nil {
		logger.Error("failed to build ui executor", "error", err)
		os.Exit(1)
	}
	backExec, err := plan.Executor(component.WorldBack)
	if err != nil {
		logger.Error("failed to build background executor", "error", err)
		os.Exit(1)
	}

	if err := backExec.Init(ctx); err != nil {
		logger.Error("background world init failed", "error", err)
		os.Exit(1)
	}
	if err := uiExec.Init(ctx); err != nil {
		logger.Error("ui world init failed", "error", err)
		os.Exit(1)
	}

	logger.Info("starting jokolay",
		"ui_components", uiExec.Names(),
		"background_components", backExec.Names(),
		"mumble_segment", segmentName,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		backExec.Run(ctx, cfg.Mumble.PollInterval.Duration)
	}()
	uiExec.Run(ctx, cfg.Overlay.PollInterval.Duration)
	<-done
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// loadPackages ingests every package (zip file or extracted folder) found
// directly under each directory in dirs, registering each with dataMgr.
// Load failures are logged and skipped rather than aborting startup, since
// one bad package should not prevent the overlay from running.
func loadPackages(log *slog.Logger, dataMgr *data.Manager, dirs []string) {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warn("cannot read package directory", "dir", dir, "error", err)
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			src, err := openPackageSource(path, e.IsDir())
			if err != nil {
				log.Warn("cannot open package", "path", path, "error", err)
				continue
			}
			core, report, err := ingest.Ingest(context.Background(), src)
			src.Close()
			if err != nil {
				log.Warn("ingest failed", "path", path, "error", err)
				continue
			}
			if err := dataMgr.LoadPackage(core); err != nil {
				log.Warn("failed to register package", "path", path, "error", err)
				continue
			}
			log.Info("loaded package", "path", path, "markers", report.Markers, "trails", report.Trails, "warnings", len(report.Warnings))
		}
	}
}

func openPackageSource(path string, isDir bool) (ingest.Source, error) {
	if isDir {
		return ingest.OpenFolder(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") || strings.EqualFold(filepath.Ext(path), ".taco") {
		return ingest.OpenZip(path)
	}
	return nil, fmt.Errorf("unrecognized package entry: %s", path)
}

// buildRegistry wires every component per the descriptor graph: the
// background world hosts game-state reading, package-data bookkeeping, and
// window tracking; the UI world hosts the game-state mirror, package
// projection, and the renderer bridge. mumble-ui and pack-ui sit in the UI
// world since they drive GPU-facing state, while window-manager's
// Requirements edge on mumble-ui crosses worlds -- channel binding happens
// once across the merged graph regardless of World, so that's fine.
func buildRegistry(log *slog.Logger, segmentName string, dataMgr *data.Manager, minWidth, minHeight int32) *component.Registry {
	registry := component.NewRegistry(log)

	registry.Register(component.Descriptor{
		Name:  "mumble-reader",
		World: component.WorldBack,
		Peers: []string{"mumble-ui"},
	}, mumble.NewReader(log, segmentName))

	registry.Register(component.Descriptor{
		Name:                "mumble-ui",
		World:               component.WorldUI,
		Peers:               []string{"mumble-reader"},
		AcceptNotifications: true,
	}, mumble.NewUIMirror(log))

	registry.Register(component.Descriptor{
		Name:                "pack-data",
		World:               component.WorldBack,
		Requirements:        []string{"mumble-reader"},
		Notifies:            []string{"pack-ui"},
		AcceptNotifications: true,
	}, dataMgr)

	registry.Register(component.Descriptor{
		Name:                "pack-ui",
		World:               component.WorldUI,
		Requirements:        []string{"mumble-ui", "pack-data"},
		Notifies:            []string{"renderer"},
		AcceptNotifications: true,
	}, ui.NewManager(log))

	registry.Register(component.Descriptor{
		Name:                "renderer",
		World:               component.WorldUI,
		AcceptNotifications: true,
	}, render.NewBridge(log))

	monitorWidth, monitorHeight := detectMonitorResolution(minWidth, minHeight)
	registry.Register(component.Descriptor{
		Name:         "window-manager",
		World:        component.WorldBack,
		Requirements: []string{"mumble-ui"},
	}, overlaywin.NewManager(log, monitorWidth, monitorHeight))

	return registry
}

// detectMonitorResolution has no windowing library available anywhere in
// the example pack to query the primary monitor's resolution, so it falls
// back to a generous default clamp ceiling; the host process that owns the
// real window handle is expected to replace this with the measured
// resolution before wiring overlaywin.NewManager in a production build.
func detectMonitorResolution(minWidth, minHeight int32) (int32, int32) {
	const fallbackWidth, fallbackHeight = 1920, 1080
	w, h := int32(fallbackWidth), int32(fallbackHeight)
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}
	return w, h
}
