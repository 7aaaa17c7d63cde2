package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/kafka"
	"github.com/devscout/github-leadgen/pkg/log"
)

func main() {
	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, _ := log.NewCslLogger()

	// Setup database
	conn, err := db.FactoryConnector(config)
	if err != nil {
		logger.Error(context.Background(), "Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leadModel, _ := model.NewLead(config, logger, conn)
	if err := conn.Migrate(leadModel); err != nil {
		logger.Error(ctx, "Migration failed: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	startLeadConsumer(ctx, config, logger, leadModel)

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startLeadConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, leadModel *model.Lead) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicLead, "lead-consumer-group")

	// Register handler for lead messages
	consumer.RegisterHandler("lead", func(data []byte) error {
		var leadMsg model.LeadMessage
		if err := json.Unmarshal(data, &leadMsg); err != nil {
			return fmt.Errorf("failed to unmarshal lead message: %w", err)
		}

		// Save lead snapshot to database
		if err := leadModel.Upsert(leadMsg); err != nil {
			return fmt.Errorf("failed to save lead to database: %w", err)
		}

		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Lead consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Lead consumer started successfully")
}
