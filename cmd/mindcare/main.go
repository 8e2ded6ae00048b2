package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/app/bootstrap"
	appconfig "github.com/wolfman30/mindcare/internal/config"
	"github.com/wolfman30/mindcare/internal/observability/metrics"
	"github.com/wolfman30/mindcare/internal/pages"
	"github.com/wolfman30/mindcare/internal/router"
	"github.com/wolfman30/mindcare/internal/state"
	"github.com/wolfman30/mindcare/pkg/logging"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so an error exit still closes Redis and
// stops the metrics server.
func run() int {
	location := flag.String("open", "/", "page to open first, e.g. /counselors?specialty=Depression")
	flag.Parse()

	cfg := appconfig.Load()

	// stdout belongs to the pages; logs go to stderr.
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)
	logger.Info("starting mindcare", "env", cfg.Env, "api", cfg.APIBaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	clientMetrics := metrics.NewClientMetrics(reg)
	bookingMetrics := metrics.NewBookingMetrics(reg)
	if cfg.MetricsAddr != "" {
		metricsSrv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	client := api.NewClient(cfg.APIBaseURL, logger,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithMetrics(clientMetrics),
	)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	backend, err := bootstrap.BuildBackend(client, redisClient, cfg, logger)
	if err != nil {
		logger.Error("failed to build backend", "error", err)
		return 1
	}

	app := pages.NewApp(pages.Config{
		API:     client,
		Store:   state.NewStore(logger),
		Router:  router.New(logger),
		Backend: backend,
		Logger:  logger,
		Metrics: bookingMetrics,
	})
	if err := app.Start(ctx, *location); err != nil {
		logger.Error("failed to open first page", "error", err)
		return 1
	}

	if err := shell(ctx, app, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shell stopped", "error", err)
		return 1
	}
	logger.Info("mindcare exited")
	return 0
}

// shell renders the current page and dispatches one command per input line
// until quit, EOF or a signal.
func shell(ctx context.Context, app *pages.App, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		app.Render(os.Stdout)
		fmt.Print("\n> ")

		select {
		case <-ctx.Done():
			fmt.Println()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "quit", "exit":
				return nil
			case "":
				continue
			}
			// Dispatch already surfaces errors in the flash line.
			_ = app.Dispatch(ctx, line)
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return srv
}
