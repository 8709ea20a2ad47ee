// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/at-ishikawa/tango/internal/mastery"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Practice PracticeConfig `mapstructure:"practice"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite3 mysql"`

	// SQLite
	Path string `mapstructure:"path"`

	// MySQL
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
}

// PracticeConfig carries session-level settings. The default user id lives
// here, at the outermost layer: the engine itself requires an explicit user
// id on every call.
type PracticeConfig struct {
	DefaultUserID   int64 `mapstructure:"default_user_id" validate:"required,gt=0"`
	ActiveWordCount int   `mapstructure:"active_word_count" validate:"gt=0"`
	DueOnly         bool  `mapstructure:"due_only"`
}

// ScoringConfig exposes the scoring model's tunable constants. The zero value
// of any field falls back to the shipped default.
type ScoringConfig struct {
	MinAttemptsPerPhase   int     `mapstructure:"min_attempts_per_phase" validate:"omitempty,gt=0"`
	MinCorrectPerPhase    int     `mapstructure:"min_correct_per_phase" validate:"omitempty,gt=0"`
	MasteryThreshold      float64 `mapstructure:"mastery_threshold" validate:"omitempty,gt=0,lte=1"`
	PhaseAdvanceThreshold float64 `mapstructure:"phase_advance_threshold" validate:"omitempty,gt=0,lte=1"`
	MixedModeRequirement  float64 `mapstructure:"mixed_mode_requirement" validate:"omitempty,gt=0,lte=1"`
	HistoryWindow         int     `mapstructure:"history_window" validate:"omitempty,gt=1"`
}

// Params merges the configured overrides into the default scoring params.
func (c ScoringConfig) Params() mastery.Params {
	params := mastery.DefaultParams()
	if c.MinAttemptsPerPhase > 0 {
		params.MinAttemptsPerPhase = c.MinAttemptsPerPhase
	}
	if c.MinCorrectPerPhase > 0 {
		params.MinCorrectPerPhase = c.MinCorrectPerPhase
	}
	if c.MasteryThreshold > 0 {
		params.MasteryThreshold = c.MasteryThreshold
	}
	if c.PhaseAdvanceThreshold > 0 {
		params.PhaseAdvanceThreshold = c.PhaseAdvanceThreshold
	}
	if c.MixedModeRequirement > 0 {
		params.MixedModeRequirement = c.MixedModeRequirement
	}
	if c.HistoryWindow > 1 {
		params.HistoryWindow = c.HistoryWindow
	}
	return params
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tango")
	}

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", filepath.Join("data", "tango.db"))
	v.SetDefault("database.port", 3306)
	v.SetDefault("practice.default_user_id", 1)
	v.SetDefault("practice.active_word_count", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
