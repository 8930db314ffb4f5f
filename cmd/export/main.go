package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spasumarthi/food-delivery-datagen/internal/export"
	"github.com/spasumarthi/food-delivery-datagen/pkg/bigquery"
	"github.com/spasumarthi/food-delivery-datagen/pkg/config"
	"github.com/spasumarthi/food-delivery-datagen/pkg/db"
	"github.com/spasumarthi/food-delivery-datagen/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "export"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "export",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithRunID(context.Background(), uuid.NewString())
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"sink": cfg.Export.Sink,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	sink, cleanup, err := buildSink(ctx, cfg, logg)
	requireResource(ctx, logg, "export sink", err)
	defer cleanup()

	exporter, err := export.New(dbClient, cfg.DB.Schema, sink, logg)
	requireResource(ctx, logg, "exporter", err)

	logg.Info(ctx, "export starting")
	started := time.Now()

	if err := exporter.Run(ctx); err != nil {
		logg.Error(ctx, "export failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "took", time.Since(started).String()), "export complete")
}

func buildSink(ctx context.Context, cfg *config.Config, logg *logger.Logger) (export.Sink, func(), error) {
	noop := func() {}

	switch cfg.Export.Sink {
	case "parquet":
		sink, err := export.NewParquetSink(cfg.Export.OutDir)
		return sink, noop, err

	case "bigquery":
		client, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			return nil, noop, err
		}
		sink, err := export.NewBigQuerySink(client, cfg.BigQuery.TablePrefix)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return sink, func() {
			if err := client.Close(); err != nil {
				logg.Error(ctx, "error closing bigquery client", err)
			}
		}, nil

	default:
		return nil, noop, fmt.Errorf("unknown export sink %q", cfg.Export.Sink)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
