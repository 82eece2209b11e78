package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"catalogstudio/internal/config"
	"catalogstudio/internal/db"
	"catalogstudio/internal/embeddings"
	"catalogstudio/internal/logger"
	"catalogstudio/internal/observability"
	"catalogstudio/internal/repository"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogDev, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	observability.Start(cfg.MetricsPort)

	ctx := context.Background()

	dbConn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer dbConn.Close()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect vector store", zap.Error(err))
	}
	defer pool.Close()

	productRepo := &repository.ProductRepository{DB: dbConn}
	vectorRepo := &repository.VectorRepository{DB: pool}

	products, err := productRepo.ListPending(ctx)
	if err != nil {
		log.Fatal("list pending products", zap.Error(err))
	}
	log.Info("embedding scraped products", zap.Int("pending", len(products)), zap.Int("workers", cfg.WorkerCount))

	failed := embeddings.RunWorkers(ctx, products, embeddings.NewOpenAIEmbedder(cfg.OpenAIKey), vectorRepo, productRepo, cfg.WorkerCount, log)

	log.Info("embeddings finished", zap.Int("products", len(products)), zap.Int("failed", failed))
}
