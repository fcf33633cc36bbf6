// Package main is the entry point for the reading catalog API server.
// It wires together configuration, the database connection, and the HTTP router.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aoideee/bookshelf/internal/data"
)

// appVersion is the current version of the API, shown in logs and /api/health.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig // Server configuration loaded at startup
	logger *slog.Logger // Structured logger that writes to stdout
	models data.Models  // Database model layer for all tables
}

// main is the application entry point.
// It loads config, opens the database, wires up dependencies, and starts the HTTP server.
func main() {
	// Create a structured logger that writes human-readable text to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	settings, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}

	dialect, err := data.NewDialect(settings.db.driver)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	// Open and verify the database connection pool.
	db, err := data.Open(dialect, settings.db.dsn, data.PoolConfig{
		MaxOpenConns: settings.db.maxOpenConns,
		MaxIdleConns: settings.db.maxIdleConns,
		MaxIdleTime:  settings.db.maxIdleTime,
	})
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer db.Close() // Close the pool cleanly when main() returns.

	logger.Info("database connection pool established", "driver", dialect.Driver())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = data.Migrate(ctx, db, dialect)
	cancel()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	// Bundle all shared dependencies into a single struct.
	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
		models: data.NewModels(db, dialect),
	}

	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
