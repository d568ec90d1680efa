package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardlens/internal/config"
	"cardlens/internal/store"
	"cardlens/internal/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg)
	if err != nil {
		logger.Error("store initialization failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	srv, err := web.NewServer(cfg, st)
	if err != nil {
		logger.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		if err := srv.Shutdown(30 * time.Second); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		close(done)
	}()

	logger.Info("starting cardlens", "port", cfg.Port, "store", cfg.StoreBackend)
	if err := srv.Listen(":" + cfg.Port); err != nil {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped gracefully")
}
