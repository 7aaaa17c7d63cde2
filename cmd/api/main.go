package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/ui"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
)

func main() {
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	ctx := context.Background()
	conn, err := db.FactoryConnector(config)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	server, err := ui.NewServer(logger, config, conn)
	if err != nil {
		logger.Error(ctx, "Failed to create API server: %v", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "API server error: %v", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Shutdown failed: %v", err)
	}
}
