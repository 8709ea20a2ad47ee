package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/tango/internal/config"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	term TEXT NOT NULL,
	meaning TEXT NOT NULL,
	example TEXT NOT NULL DEFAULT '',
	difficulty REAL NOT NULL DEFAULT 1.0,
	resource_id INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (resource_id, term)
);

CREATE TABLE IF NOT EXISTS progress_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	total_attempts INTEGER NOT NULL DEFAULT 0,
	correct_attempts INTEGER NOT NULL DEFAULT 0,
	recognition_attempts INTEGER NOT NULL DEFAULT 0,
	recognition_correct INTEGER NOT NULL DEFAULT 0,
	production_attempts INTEGER NOT NULL DEFAULT 0,
	production_correct INTEGER NOT NULL DEFAULT 0,
	application_attempts INTEGER NOT NULL DEFAULT 0,
	application_correct INTEGER NOT NULL DEFAULT 0,
	mastery_score REAL NOT NULL DEFAULT 0,
	current_phase INTEGER NOT NULL DEFAULT 0,
	review_interval_days INTEGER NOT NULL DEFAULT 1,
	ease_factor REAL NOT NULL DEFAULT 2.5,
	next_review_date TIMESTAMP,
	first_seen_at TIMESTAMP NOT NULL,
	last_practiced_at TIMESTAMP NOT NULL,
	mastered_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (word_id, user_id),
	FOREIGN KEY (word_id) REFERENCES words (id)
);

CREATE TABLE IF NOT EXISTS attempt_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	progress_id INTEGER NOT NULL,
	phase INTEGER NOT NULL,
	input_mode INTEGER NOT NULL,
	correct BOOLEAN NOT NULL,
	difficulty_weight REAL NOT NULL DEFAULT 1.0,
	response_time_ms INTEGER NOT NULL DEFAULT 0,
	confidence REAL NOT NULL DEFAULT 0,
	context_type TEXT NOT NULL DEFAULT 'isolated',
	activity_name TEXT NOT NULL DEFAULT '',
	resource_id INTEGER NOT NULL DEFAULT 0,
	attempted_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	FOREIGN KEY (progress_id) REFERENCES progress_records (id)
);

CREATE INDEX IF NOT EXISTS idx_attempt_logs_progress
	ON attempt_logs (progress_id, attempted_at);
CREATE INDEX IF NOT EXISTS idx_progress_records_due
	ON progress_records (user_id, next_review_date);
`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS words (
	id BIGINT PRIMARY KEY AUTO_INCREMENT,
	term VARCHAR(255) NOT NULL,
	meaning TEXT NOT NULL,
	example TEXT,
	difficulty DOUBLE NOT NULL DEFAULT 1.0,
	resource_id BIGINT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uq_words_resource_term (resource_id, term)
);

CREATE TABLE IF NOT EXISTS progress_records (
	id BIGINT PRIMARY KEY AUTO_INCREMENT,
	word_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	total_attempts INT NOT NULL DEFAULT 0,
	correct_attempts INT NOT NULL DEFAULT 0,
	recognition_attempts INT NOT NULL DEFAULT 0,
	recognition_correct INT NOT NULL DEFAULT 0,
	production_attempts INT NOT NULL DEFAULT 0,
	production_correct INT NOT NULL DEFAULT 0,
	application_attempts INT NOT NULL DEFAULT 0,
	application_correct INT NOT NULL DEFAULT 0,
	mastery_score DOUBLE NOT NULL DEFAULT 0,
	current_phase INT NOT NULL DEFAULT 0,
	review_interval_days INT NOT NULL DEFAULT 1,
	ease_factor DOUBLE NOT NULL DEFAULT 2.5,
	next_review_date DATETIME,
	first_seen_at DATETIME NOT NULL,
	last_practiced_at DATETIME NOT NULL,
	mastered_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uq_progress_word_user (word_id, user_id),
	FOREIGN KEY (word_id) REFERENCES words (id),
	KEY idx_progress_records_due (user_id, next_review_date)
);

CREATE TABLE IF NOT EXISTS attempt_logs (
	id BIGINT PRIMARY KEY AUTO_INCREMENT,
	progress_id BIGINT NOT NULL,
	phase INT NOT NULL,
	input_mode INT NOT NULL,
	correct BOOLEAN NOT NULL,
	difficulty_weight DOUBLE NOT NULL DEFAULT 1.0,
	response_time_ms BIGINT NOT NULL DEFAULT 0,
	confidence DOUBLE NOT NULL DEFAULT 0,
	context_type VARCHAR(32) NOT NULL DEFAULT 'isolated',
	activity_name VARCHAR(255) NOT NULL DEFAULT '',
	resource_id BIGINT NOT NULL DEFAULT 0,
	attempted_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (progress_id) REFERENCES progress_records (id),
	KEY idx_attempt_logs_progress (progress_id, attempted_at)
);
`

// InitSchema creates the tables when they do not exist yet.
func InitSchema(db *sqlx.DB, driver string) error {
	schema := sqliteSchema
	if driver == config.DriverMySQL {
		schema = mysqlSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("db.Exec(schema) > %w", err)
	}
	return nil
}
