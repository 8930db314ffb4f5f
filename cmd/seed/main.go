package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spasumarthi/food-delivery-datagen/internal/load"
	"github.com/spasumarthi/food-delivery-datagen/internal/seed"
	"github.com/spasumarthi/food-delivery-datagen/pkg/config"
	"github.com/spasumarthi/food-delivery-datagen/pkg/db"
	"github.com/spasumarthi/food-delivery-datagen/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithRunID(context.Background(), uuid.NewString())
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"seed": cfg.Seed.Seed,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	loader, err := load.New(dbClient, cfg.DB.Schema, cfg.Seed.BatchSize, logg)
	requireResource(ctx, logg, "loader", err)

	runner, err := seed.NewRunner(dbClient, loader, cfg.Seed, cfg.DB.Schema, logg)
	requireResource(ctx, logg, "seed runner", err)

	logg.Info(ctx, "seed run starting")
	started := time.Now()

	if err := runner.Run(ctx); err != nil {
		failCtx := logg.WithField(ctx, "pg", db.Dump(err))
		logg.Error(failCtx, "seed run failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "took", time.Since(started).String()), "seed run complete")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
