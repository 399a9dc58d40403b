package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftdeck/craftdeck/craftdeck"
	"github.com/craftdeck/craftdeck/craftdeck/database"
	"github.com/craftdeck/craftdeck/craftdeck/logger"
	"github.com/craftdeck/craftdeck/craftdeck/migration"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	importLegacy := flag.Bool("import-legacy", false, "import the legacy dataset before starting")
	legacyDataDir := flag.String("legacy-data", "data", "directory holding legacy seed files")
	flag.Parse()

	cfg, err := craftdeck.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	customHandler := logger.NewHandler(cfg.Log.Level)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting CraftDeck",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	if *importLegacy {
		if err := runLegacyImport(ctx, cfg, db, *legacyDataDir); err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	engine := craftdeck.New(*cfg, version, commit)
	engine.DB = db
	if err := engine.Setup(runCtx); err != nil {
		slog.Error("Failed to set up engine", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("CraftDeck is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}

func runLegacyImport(ctx context.Context, cfg *craftdeck.Config, db *database.DB, dataDir string) error {
	migrator := migration.NewMigrator(db.BunDB(), dataDir)

	if cfg.Legacy.MongoURI != "" {
		client, err := migration.ConnectMongo(ctx, cfg.Legacy.MongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)
		migrator.UseMongo(client, cfg.Legacy.Database)
	} else {
		slog.Info("No legacy mongo_uri configured, importing from seed files only")
	}

	return migrator.MigrateAll(ctx)
}
