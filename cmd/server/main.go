package main

import (
	"os"
	"os/signal"
	"syscall"

	"flock/internal/config"
	"flock/internal/middleware"
	"flock/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		middleware.Logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			middleware.Logger.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	middleware.Logger.Info("Shutting down server")
	if err := srv.Shutdown(); err != nil {
		middleware.Logger.Error("Forced shutdown", "error", err)
	}
	middleware.Logger.Info("Server exited")
}
