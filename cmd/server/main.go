package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"coophttp/internal/config"
	"coophttp/internal/logging"
	"coophttp/internal/metrics"
	"coophttp/internal/serve"
	"coophttp/internal/threadpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	config.ApplyArgs(&cfg, os.Args[1:])

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	reg := metrics.NewRegistry()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.ListenAddr, cfg.Metrics.Endpoint, reg, logger)
	}

	pool := threadpool.New(4, 64)
	pool.Start()
	defer pool.Stop()

	router := newDemoRouter(pool)

	srv, err := serve.New(cfg.Server.Hostname, cfg.Server.Port, router, logger, reg)
	if err != nil {
		logger.Fatal("failed to bind listener", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("server starting", zap.Stringer("addr", srv.Addr()))
	srv.Run(ctx)
}

func serveMetrics(addr, endpoint string, reg *metrics.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle(endpoint, reg.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics listener stopped", zap.Error(err))
	}
}
