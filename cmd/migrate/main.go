package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/culinara/culinara/internal/db"
	"github.com/culinara/culinara/pkg/config"
	"github.com/culinara/culinara/pkg/logging"
)

func main() {
	seed := flag.Bool("seed", false, "insert a small demo corpus after migrating")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	logger.Info("Applying schema migrations")
	if err := database.Migrate(ctx); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	if *seed {
		logger.Info("Seeding demo corpus")
		if err := db.Seed(ctx, db.NewRepository(database.DB)); err != nil {
			logger.Fatal("Seeding failed", zap.Error(err))
		}
	}

	logger.Info("Migrations complete")
}
