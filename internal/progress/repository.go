package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/progress/mock_repository.go -package=mock_progress

// Repository defines operations for managing progress records.
type Repository interface {
	FindByWordAndUser(ctx context.Context, wordID, userID int64) (*Record, error)
	FindByUser(ctx context.Context, userID int64) ([]Record, error)
	FindDueForReview(ctx context.Context, userID int64, now time.Time) ([]Record, error)
	Create(ctx context.Context, record *Record) error
	Update(ctx context.Context, record *Record) error
}

// HistoryRepository defines operations for the append-only attempt history.
type HistoryRepository interface {
	Append(ctx context.Context, log *AttemptLog) error
	FindRecentByProgress(ctx context.Context, progressID int64, limit int) ([]AttemptLog, error)
	FindByUser(ctx context.Context, userID int64) ([]AttemptLog, error)
}

// DBRepository implements Repository on sqlx.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

const recordColumns = `id, word_id, user_id,
	total_attempts, correct_attempts,
	recognition_attempts, recognition_correct,
	production_attempts, production_correct,
	application_attempts, application_correct,
	mastery_score, current_phase,
	review_interval_days, ease_factor, next_review_date,
	first_seen_at, last_practiced_at, mastered_at,
	created_at, updated_at`

// FindByWordAndUser returns the record for a (word, user) pair, or nil if the
// word has never been attempted.
func (r *DBRepository) FindByWordAndUser(ctx context.Context, wordID, userID int64) (*Record, error) {
	var record Record
	err := r.db.GetContext(ctx, &record,
		"SELECT "+recordColumns+" FROM progress_records WHERE word_id = ? AND user_id = ?",
		wordID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(progress_records) > %w: %w", ErrStoreUnavailable, err)
	}
	return &record, nil
}

// FindByUser returns all records for a user.
func (r *DBRepository) FindByUser(ctx context.Context, userID int64) ([]Record, error) {
	var records []Record
	if err := r.db.SelectContext(ctx, &records,
		"SELECT "+recordColumns+" FROM progress_records WHERE user_id = ? ORDER BY id",
		userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(progress_records by user) > %w: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}

// FindDueForReview returns records whose next review date has passed.
func (r *DBRepository) FindDueForReview(ctx context.Context, userID int64, now time.Time) ([]Record, error) {
	var records []Record
	if err := r.db.SelectContext(ctx, &records,
		"SELECT "+recordColumns+` FROM progress_records
		WHERE user_id = ? AND next_review_date IS NOT NULL AND next_review_date <= ?
		ORDER BY next_review_date`,
		userID, now); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due progress_records) > %w: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}

// Create inserts a new record and fills in its id.
func (r *DBRepository) Create(ctx context.Context, record *Record) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO progress_records (word_id, user_id,
			total_attempts, correct_attempts,
			recognition_attempts, recognition_correct,
			production_attempts, production_correct,
			application_attempts, application_correct,
			mastery_score, current_phase,
			review_interval_days, ease_factor, next_review_date,
			first_seen_at, last_practiced_at, mastered_at,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.WordID, record.UserID,
		record.TotalAttempts, record.CorrectAttempts,
		record.RecognitionAttempts, record.RecognitionCorrect,
		record.ProductionAttempts, record.ProductionCorrect,
		record.ApplicationAttempts, record.ApplicationCorrect,
		record.MasteryScore, record.CurrentPhase,
		record.ReviewIntervalDays, record.EaseFactor, record.NextReviewDate,
		record.FirstSeenAt, record.LastPracticedAt, record.MasteredAt,
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert progress_record) > %w: %w", ErrStoreUnavailable, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w: %w", ErrStoreUnavailable, err)
	}
	record.ID = id
	return nil
}

// Update persists the mutable fields of an existing record.
func (r *DBRepository) Update(ctx context.Context, record *Record) error {
	record.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx,
		`UPDATE progress_records SET
			total_attempts = ?, correct_attempts = ?,
			recognition_attempts = ?, recognition_correct = ?,
			production_attempts = ?, production_correct = ?,
			application_attempts = ?, application_correct = ?,
			mastery_score = ?, current_phase = ?,
			review_interval_days = ?, ease_factor = ?, next_review_date = ?,
			last_practiced_at = ?, mastered_at = ?, updated_at = ?
		WHERE id = ?`,
		record.TotalAttempts, record.CorrectAttempts,
		record.RecognitionAttempts, record.RecognitionCorrect,
		record.ProductionAttempts, record.ProductionCorrect,
		record.ApplicationAttempts, record.ApplicationCorrect,
		record.MasteryScore, record.CurrentPhase,
		record.ReviewIntervalDays, record.EaseFactor, record.NextReviewDate,
		record.LastPracticedAt, record.MasteredAt, record.UpdatedAt,
		record.ID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update progress_record) > %w: %w", ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w: %w", ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("progress_record %d: %w", record.ID, ErrNotFound)
	}
	return nil
}

// DBHistoryRepository implements HistoryRepository on sqlx.
type DBHistoryRepository struct {
	db *sqlx.DB
}

// NewDBHistoryRepository creates a new DBHistoryRepository.
func NewDBHistoryRepository(db *sqlx.DB) *DBHistoryRepository {
	return &DBHistoryRepository{db: db}
}

const logColumns = `id, progress_id, phase, input_mode, correct,
	difficulty_weight, response_time_ms, confidence, context_type,
	activity_name, resource_id, attempted_at, created_at`

// Append inserts one attempt log. Logs are never updated or deleted.
func (r *DBHistoryRepository) Append(ctx context.Context, log *AttemptLog) error {
	log.CreatedAt = time.Now()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO attempt_logs (progress_id, phase, input_mode, correct,
			difficulty_weight, response_time_ms, confidence, context_type,
			activity_name, resource_id, attempted_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ProgressID, log.Phase, log.InputMode, log.Correct,
		log.DifficultyWeight, log.ResponseTimeMs, log.Confidence, log.ContextType,
		log.ActivityName, log.ResourceID, log.AttemptedAt, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert attempt_log) > %w: %w", ErrStoreUnavailable, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w: %w", ErrStoreUnavailable, err)
	}
	log.ID = id
	return nil
}

// FindRecentByProgress returns the most recent logs for a record, newest
// first, capped at limit.
func (r *DBHistoryRepository) FindRecentByProgress(ctx context.Context, progressID int64, limit int) ([]AttemptLog, error) {
	var logs []AttemptLog
	if err := r.db.SelectContext(ctx, &logs,
		"SELECT "+logColumns+" FROM attempt_logs WHERE progress_id = ? ORDER BY attempted_at DESC, id DESC LIMIT ?",
		progressID, limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(recent attempt_logs) > %w: %w", ErrStoreUnavailable, err)
	}
	return logs, nil
}

// FindByUser returns all logs for a user's records, oldest first.
func (r *DBHistoryRepository) FindByUser(ctx context.Context, userID int64) ([]AttemptLog, error) {
	var logs []AttemptLog
	if err := r.db.SelectContext(ctx, &logs,
		`SELECT l.id, l.progress_id, l.phase, l.input_mode, l.correct,
			l.difficulty_weight, l.response_time_ms, l.confidence, l.context_type,
			l.activity_name, l.resource_id, l.attempted_at, l.created_at
		FROM attempt_logs l
		JOIN progress_records p ON p.id = l.progress_id
		WHERE p.user_id = ?
		ORDER BY l.attempted_at, l.id`,
		userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(attempt_logs by user) > %w: %w", ErrStoreUnavailable, err)
	}
	return logs, nil
}
