package main

import (
	"log"
	"net/http"

	"ti4-tracker/internal/config"
	"ti4-tracker/internal/db"
	"ti4-tracker/internal/logging"
	"ti4-tracker/internal/server"

	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var conn *gorm.DB
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalw("database connection failed", "error", err)
		}
		if err := db.Tune(conn, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeSeconds, cfg.DBConnMaxIdleTimeSeconds); err != nil {
			logger.Fatalw("database pool setup failed", "error", err)
		}
		if err := db.Migrate(conn); err != nil {
			logger.Fatalw("database migration failed", "error", err)
		}
	} else {
		logger.Warnw("DATABASE_URL not set, running memory-only; games are lost on restart")
	}

	srv := server.New(conn, cfg, logger)
	if conn != nil {
		if err := srv.RestoreActiveGames(); err != nil {
			logger.Fatalw("restore failed", "error", err)
		}
	}

	logger.Infow("listening", "address", cfg.HTTPAddress)
	if err := http.ListenAndServe(cfg.HTTPAddress, srv.Handler()); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}
