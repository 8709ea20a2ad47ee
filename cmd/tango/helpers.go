package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/tango/internal/config"
	"github.com/at-ishikawa/tango/internal/database"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if err := database.InitSchema(db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.InitSchema() > %w", err)
	}
	return db, nil
}
