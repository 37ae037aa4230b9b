package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"yelp-explorer/internal/api"
	"yelp-explorer/internal/config"
	"yelp-explorer/internal/dataset"
	"yelp-explorer/internal/engine"
	"yelp-explorer/internal/logging"
	"yelp-explorer/internal/metrics"
)

var (
	configFile string
	listenAddr string
	logLevel   string
	dataDir    string
	cacheDir   string
	handle     string

	rootCmd = &cobra.Command{
		Use:   "explorer [flags]",
		Short: "Interactive explorer for the Yelp check-in dataset",
		Long: `explorer downloads the Yelp dataset, loads yelp_academic_dataset_checkin.json
and serves a dashboard for scatter-plotting any column against a numeric one.

Examples:
  explorer                                  # Download into ~/.cache/kagglehub and serve on :8080
  explorer --data-dir ./yelp                # Use an unpacked copy, no download
  explorer --config explorer.yaml --listen :9000`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (default :8080)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding an unpacked copy of the dataset")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Download cache directory")
	rootCmd.Flags().StringVar(&handle, "dataset", "", "Dataset handle, owner/slug[/versions/N]")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// 1. Configuration: defaults < file < env < flags
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = listenAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("data-dir") {
		cfg.Dataset.Dir = dataDir
	}
	if flags.Changed("cache-dir") {
		cfg.Dataset.CacheDir = cacheDir
	}
	if flags.Changed("dataset") {
		cfg.Dataset.Handle = handle
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	// 2. Loader, memo cache and metrics
	fs := afero.NewOsFs()
	var fetcher dataset.Fetcher
	if cfg.Dataset.Dir != "" {
		fetcher = dataset.DirFetcher{Fs: fs, Dir: cfg.Dataset.Dir}
	} else {
		fetcher = dataset.NewKaggleFetcher(fs, dataset.KaggleOptions{
			BaseURL:  cfg.Dataset.BaseURL,
			CacheDir: cfg.Dataset.CacheDir,
			Username: cfg.Dataset.Username,
			Key:      cfg.Dataset.Key,
			Logger:   log.With(logger, "component", "dataset"),
		})
	}
	loader := engine.NewLoader(fs, fetcher, cfg.Dataset.Handle, cfg.Dataset.File, log.With(logger, "component", "loader"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	cache := engine.NewCache(m.InstrumentLoad(loader.Load))

	// 3. HTTP server; requests arriving before the load finishes wait for it
	h := api.NewHandler(cache, m, log.With(logger, "component", "api"))
	e, err := api.NewServer(h, reg, logger)
	if err != nil {
		return err
	}

	// 4. Warm the cache in the background
	go func() {
		level.Info(logger).Log("msg", "loading dataset in background")
		t0 := time.Now()
		if _, err := cache.Get(context.Background()); err != nil {
			level.Error(logger).Log("msg", "background load failed", "err", err)
			return
		}
		level.Info(logger).Log("msg", "dataset ready", "took", time.Since(t0))
	}()

	// 5. Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "server listening", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	level.Info(logger).Log("msg", "server stopped")
	return nil
}
