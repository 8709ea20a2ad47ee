// Package progress owns the per-(word, user) mastery record, its append-only
// attempt history and the orchestrator that records attempts atomically.
package progress

import (
	"fmt"
	"time"

	"github.com/at-ishikawa/tango/internal/mastery"
)

// Record is the persisted mastery state of one word for one user. One row
// exists per (word_id, user_id); it is created lazily on the first attempt.
type Record struct {
	ID     int64 `db:"id"`
	WordID int64 `db:"word_id"`
	UserID int64 `db:"user_id"`

	TotalAttempts   int `db:"total_attempts"`
	CorrectAttempts int `db:"correct_attempts"`

	RecognitionAttempts int `db:"recognition_attempts"`
	RecognitionCorrect  int `db:"recognition_correct"`
	ProductionAttempts  int `db:"production_attempts"`
	ProductionCorrect   int `db:"production_correct"`
	ApplicationAttempts int `db:"application_attempts"`
	ApplicationCorrect  int `db:"application_correct"`

	MasteryScore float64       `db:"mastery_score"`
	CurrentPhase mastery.Phase `db:"current_phase"`

	ReviewIntervalDays int        `db:"review_interval_days"`
	EaseFactor         float64    `db:"ease_factor"`
	NextReviewDate     *time.Time `db:"next_review_date"`

	FirstSeenAt     time.Time  `db:"first_seen_at"`
	LastPracticedAt time.Time  `db:"last_practiced_at"`
	MasteredAt      *time.Time `db:"mastered_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewRecord returns the creation defaults for a word seen for the first time.
func NewRecord(wordID, userID int64, now time.Time) *Record {
	return &Record{
		WordID:             wordID,
		UserID:             userID,
		CurrentPhase:       mastery.PhaseRecognition,
		ReviewIntervalDays: 1,
		EaseFactor:         mastery.DefaultEaseFactor,
		FirstSeenAt:        now,
		LastPracticedAt:    now,
	}
}

// Snapshot exposes the counter state the scorer and phase machine read.
func (r *Record) Snapshot() mastery.Snapshot {
	return mastery.Snapshot{
		TotalAttempts:   r.TotalAttempts,
		CorrectAttempts: r.CorrectAttempts,
		Recognition:     mastery.PhaseCounters{Attempts: r.RecognitionAttempts, Correct: r.RecognitionCorrect},
		Production:      mastery.PhaseCounters{Attempts: r.ProductionAttempts, Correct: r.ProductionCorrect},
		Application:     mastery.PhaseCounters{Attempts: r.ApplicationAttempts, Correct: r.ApplicationCorrect},
		LastPracticedAt: r.LastPracticedAt,
	}
}

// IsPromoted reports whether the word has left the recognition phase.
func (r *Record) IsPromoted() bool {
	return r.CurrentPhase >= mastery.PhaseProduction
}

// IsCompleted reports whether the word has been mastered: score at the
// threshold with mixed-mode competency held. Derived, never stored.
func (r *Record) IsCompleted(scorer *mastery.Scorer) bool {
	return scorer.Mastered(r.MasteryScore, r.Snapshot())
}

// CountAttempt bumps the lifetime and phase-specific counters.
func (r *Record) CountAttempt(attempt mastery.Attempt) {
	r.TotalAttempts++
	if attempt.Correct {
		r.CorrectAttempts++
	}

	switch attempt.Phase {
	case mastery.PhaseRecognition:
		r.RecognitionAttempts++
		if attempt.Correct {
			r.RecognitionCorrect++
		}
	case mastery.PhaseProduction:
		r.ProductionAttempts++
		if attempt.Correct {
			r.ProductionCorrect++
		}
	case mastery.PhaseApplication:
		r.ApplicationAttempts++
		if attempt.Correct {
			r.ApplicationCorrect++
		}
	}
}

// Validate checks the record's invariants. Violations mean corrupt stored
// data: scoring against such a record would compound the damage, so it is
// rejected instead of repaired.
func (r *Record) Validate() error {
	checks := []struct {
		label    string
		correct  int
		attempts int
	}{
		{"total", r.CorrectAttempts, r.TotalAttempts},
		{"recognition", r.RecognitionCorrect, r.RecognitionAttempts},
		{"production", r.ProductionCorrect, r.ProductionAttempts},
		{"application", r.ApplicationCorrect, r.ApplicationAttempts},
	}
	for _, c := range checks {
		if c.correct > c.attempts {
			return fmt.Errorf("%w: %s correct %d > attempts %d (word %d, user %d)",
				ErrInconsistentState, c.label, c.correct, c.attempts, r.WordID, r.UserID)
		}
		if c.correct < 0 || c.attempts < 0 {
			return fmt.Errorf("%w: negative %s counters (word %d, user %d)",
				ErrInconsistentState, c.label, r.WordID, r.UserID)
		}
	}

	if r.MasteryScore < 0 || r.MasteryScore > 1 {
		return fmt.Errorf("%w: mastery score %v out of range (word %d, user %d)",
			ErrInconsistentState, r.MasteryScore, r.WordID, r.UserID)
	}
	if r.EaseFactor != 0 && (r.EaseFactor < mastery.MinEaseFactor || r.EaseFactor > mastery.MaxEaseFactor) {
		return fmt.Errorf("%w: ease factor %v out of range (word %d, user %d)",
			ErrInconsistentState, r.EaseFactor, r.WordID, r.UserID)
	}
	if r.NextReviewDate != nil && r.NextReviewDate.Before(r.LastPracticedAt) {
		return fmt.Errorf("%w: next review %v before last practice %v (word %d, user %d)",
			ErrInconsistentState, r.NextReviewDate, r.LastPracticedAt, r.WordID, r.UserID)
	}

	return nil
}

// AttemptLog is one append-only history row. It is created once per answer
// and never mutated or deleted: the history is the source of truth for the
// scorer's rolling window.
type AttemptLog struct {
	ID         int64 `db:"id"`
	ProgressID int64 `db:"progress_id"`

	Phase            mastery.Phase       `db:"phase"`
	InputMode        mastery.InputMode   `db:"input_mode"`
	Correct          bool                `db:"correct"`
	DifficultyWeight float64             `db:"difficulty_weight"`
	ResponseTimeMs   int64               `db:"response_time_ms"`
	Confidence       float64             `db:"confidence"`
	ContextType      mastery.ContextType `db:"context_type"`
	ActivityName     string              `db:"activity_name"`
	ResourceID       int64               `db:"resource_id"`

	AttemptedAt time.Time `db:"attempted_at"`
	CreatedAt   time.Time `db:"created_at"`
}

// HistoryEntry converts a log row into the scorer's window representation.
func (l AttemptLog) HistoryEntry() mastery.HistoryEntry {
	return mastery.HistoryEntry{
		Correct:          l.Correct,
		DifficultyWeight: l.DifficultyWeight,
		Confidence:       l.Confidence,
	}
}
