package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cachewarden/cachewarden/internal/api"
	"github.com/cachewarden/cachewarden/internal/capture"
	"github.com/cachewarden/cachewarden/internal/config"
	"github.com/cachewarden/cachewarden/internal/daemon"
	"github.com/cachewarden/cachewarden/internal/index"
	"github.com/cachewarden/cachewarden/internal/logging"
	"github.com/cachewarden/cachewarden/internal/metrics"
	"github.com/cachewarden/cachewarden/internal/persistence"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath string
	iface      string
	pcapFile   string
	jsonLogs   bool
	debug      bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to Settings.toml")
	flag.StringVar(&f.iface, "iface", "", "Override the capture interface")
	flag.StringVar(&f.iface, "i", "", "Short form of -iface")
	flag.StringVar(&f.pcapFile, "pcap", "", "Replay a pcap file instead of attaching to a live interface (testing)")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.iface != "" {
		cfg.Capture.Iface = f.iface
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(config.ResolveConfigPath(flags.configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})
	logger.Info("cachewarden starting",
		"iface", cfg.Capture.Iface,
		"api_addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"docker", cfg.Refresh.WeRunningDocker,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, err := openSource(flags, cfg, logger.With("component", "capture"))
	if err != nil {
		return fmt.Errorf("opening frame source: %w", err)
	}
	defer source.Close()

	idx := index.New()
	// The default registerer is the one promhttp.Handler serves on /metrics.
	m := metrics.New(prometheus.DefaultRegisterer)

	var store *persistence.Store
	if cfg.Persistence.Enabled {
		store, err = persistence.Open(cfg.Persistence.DSN)
		if err != nil {
			return fmt.Errorf("opening persistence store: %w", err)
		}
		defer store.Close()

		preloaded, err := store.LoadAll(ctx)
		if err != nil {
			logger.Warn("failed to reload persisted answers", "err", err)
		} else if len(preloaded) > 0 {
			idx.InsertBatch(preloaded)
			logger.Info("reloaded persisted answers", "count", len(preloaded))
		}
	}

	apiSrv := api.New(cfg.API, idx, store, logger.With("component", "api"))
	go func() {
		logger.Info("management API listening", "addr", apiSrv.Addr())
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("management API server error", "err", err)
			cancel()
		}
	}()

	runner := daemon.NewRunner(logger.With("component", "daemon"))
	runErr := runner.Run(ctx, source, cfg, idx, m, store)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = apiSrv.Shutdown(shutdownCtx)
	shutdownCancel()
	logger.Info("cachewarden stopped")

	if runErr != nil {
		return fmt.Errorf("daemon exited with error: %w", runErr)
	}
	return nil
}

// openSource resolves the Ring Consumer's upstream FrameSource: a pcap
// replay when -pcap is given (and in tests), otherwise a live eBPF
// Observer attached to the configured interface.
func openSource(f cliFlags, cfg *config.Config, logger interface {
	Info(msg string, args ...any)
}) (capture.FrameSource, error) {
	if f.pcapFile != "" {
		logger.Info("replaying pcap file instead of live capture", "path", f.pcapFile)
		return capture.NewPcapSource(f.pcapFile)
	}
	return capture.LoadObserver(observerObjectPath, cfg.Capture.Iface)
}

// observerObjectPath is the bpf2go-compiled object produced from
// bpf/dns_observer.c (see internal/capture/generate.go).
const observerObjectPath = "internal/capture/observer_bpfel.o"
