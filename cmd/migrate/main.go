package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/craftdeck/craftdeck/craftdeck"
	"github.com/craftdeck/craftdeck/craftdeck/database"
	"github.com/craftdeck/craftdeck/craftdeck/logger"
	"github.com/craftdeck/craftdeck/craftdeck/migration"
)

// Standalone legacy importer. The main daemon can also run the import
// via -import-legacy; this binary exists for one-shot runs against a
// database the daemon is not connected to.
func main() {
	path := flag.String("config", "config.toml", "path to config")
	dataDir := flag.String("data", "data", "directory holding legacy seed files")
	batchSize := flag.Int("batch-size", 1000, "insert batch size")
	flag.Parse()

	cfg, err := craftdeck.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	ctx := context.Background()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}

	migrator := migration.NewMigrator(db.BunDB(), *dataDir)
	migrator.SetBatchSize(*batchSize)

	if cfg.Legacy.MongoURI != "" {
		client, err := migration.ConnectMongo(ctx, cfg.Legacy.MongoURI)
		if err != nil {
			slog.Error("Failed to connect to legacy mongo", "error", err)
			os.Exit(1)
		}
		defer client.Disconnect(ctx)
		migrator.UseMongo(client, cfg.Legacy.Database)
	}

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Migration completed successfully!")
}
