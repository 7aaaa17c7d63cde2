package main

import (
	"context"
	"fmt"
	"os"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/crawler"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
)

func main() {
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	conn, err := db.FactoryConnector(config)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	userMd, _ := model.NewUser(config, logger, conn)
	edgeMd, _ := model.NewEdge(config, logger, conn)
	leadMd, _ := model.NewLead(config, logger, conn)
	if err := conn.Migrate(userMd, edgeMd, leadMd); err != nil {
		logger.Error(ctx, "Migration failed: %v", err)
		os.Exit(1)
	}

	leadCrawler, err := crawler.FactoryCrawler("v1", logger, config, conn)
	if err != nil {
		logger.Error(ctx, "Failed to build crawler: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting GitHub lead crawler")
	if leadCrawler.Crawl() {
		logger.Info(ctx, "Successfully!")
	} else {
		logger.Error(ctx, "Failed!")
		os.Exit(1)
	}
}
