// Package main - Entry point for the pricing estimate server
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/api"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/bootstrap"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Config file path")
	addr := flag.String("addr", "", "Server address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		logging.Error("pricing estimate server failed", zap.Error(err))
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logging.Warn("failed to release resources", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(version, rt.Service),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("pricing estimate server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("version", version),
			zap.String("source", rt.Source),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
