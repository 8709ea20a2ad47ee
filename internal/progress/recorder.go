package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/tango/internal/mastery"
)

// Recorder composes the scorer, phase machine and review scheduler into one
// atomic "record an attempt" operation. Attempts for the same (word, user)
// key are serialized; different keys may proceed concurrently.
type Recorder struct {
	records Repository
	history HistoryRepository
	scorer  *mastery.Scorer
	params  mastery.Params
	now     func() time.Time

	locks sync.Map // key string -> *sync.Mutex
}

// NewRecorder creates a Recorder. now is injectable for tests; nil means
// time.Now.
func NewRecorder(records Repository, history HistoryRepository, params mastery.Params, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		records: records,
		history: history,
		scorer:  mastery.NewScorer(params),
		params:  params,
		now:     now,
	}
}

// Scorer exposes the configured scorer for derived checks like IsCompleted.
func (r *Recorder) Scorer() *mastery.Scorer {
	return r.scorer
}

func (r *Recorder) lock(wordID, userID int64) func() {
	key := fmt.Sprintf("%d/%d", wordID, userID)
	value, _ := r.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RecordAttempt applies one answer to the word's progress record: counters,
// mastery score, phase, review schedule and timestamps, then appends the
// attempt to the history. The updated record is returned.
//
// The history append happens after the record commit; if it fails the two
// stores are inconsistent and the error is surfaced as fatal, because the
// history drives every future rolling window for this word.
func (r *Recorder) RecordAttempt(ctx context.Context, attempt mastery.Attempt) (*Record, error) {
	if attempt.UserID == 0 {
		return nil, fmt.Errorf("attempt for word %d has no user id", attempt.WordID)
	}
	unlock := r.lock(attempt.WordID, attempt.UserID)
	defer unlock()

	now := r.now()
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = now
	}

	record, created, err := r.loadOrCreate(ctx, attempt.WordID, attempt.UserID, now)
	if err != nil {
		return nil, err
	}

	recent, err := r.history.FindRecentByProgress(ctx, record.ID, r.params.HistoryWindow-1)
	if err != nil {
		return nil, fmt.Errorf("history.FindRecentByProgress() > %w", err)
	}
	window := make([]mastery.HistoryEntry, 0, len(recent))
	for _, log := range recent {
		window = append(window, log.HistoryEntry())
	}

	// The scorer reads the post-increment counters but the pre-attempt
	// practice time, so time decay measures the gap this attempt closes.
	lastPracticedAt := record.LastPracticedAt
	if created {
		lastPracticedAt = time.Time{}
	}

	record.CountAttempt(attempt)
	snapshot := record.Snapshot()
	snapshot.LastPracticedAt = lastPracticedAt

	record.MasteryScore = r.scorer.Score(snapshot, window, attempt, now)
	record.CurrentPhase = mastery.AdvancePhase(record.CurrentPhase, snapshot, r.params)

	review := mastery.Reschedule(mastery.ReviewState{
		IntervalDays: record.ReviewIntervalDays,
		EaseFactor:   record.EaseFactor,
	}, attempt.Correct, now)
	record.ReviewIntervalDays = review.IntervalDays
	record.EaseFactor = review.EaseFactor
	record.NextReviewDate = &review.NextReview

	record.LastPracticedAt = now
	if record.MasteredAt == nil && r.scorer.Mastered(record.MasteryScore, snapshot) {
		masteredAt := now
		record.MasteredAt = &masteredAt
		slog.Debug("word mastered",
			slog.Int64("word_id", record.WordID),
			slog.Int64("user_id", record.UserID),
			slog.Float64("score", record.MasteryScore))
	}

	if err := r.records.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("records.Update() > %w", err)
	}

	log := &AttemptLog{
		ProgressID:       record.ID,
		Phase:            attempt.Phase,
		InputMode:        attempt.InputMode,
		Correct:          attempt.Correct,
		DifficultyWeight: attempt.DifficultyWeight,
		ResponseTimeMs:   attempt.ResponseTimeMs,
		Confidence:       attempt.Confidence,
		ContextType:      attempt.ContextType,
		ActivityName:     attempt.ActivityName,
		ResourceID:       attempt.ResourceID,
		AttemptedAt:      attempt.AttemptedAt,
	}
	if err := r.history.Append(ctx, log); err != nil {
		// The record committed but its history did not: every future score
		// for this word would be computed against a hole. Do not swallow.
		return nil, fmt.Errorf("history diverged from committed record (word %d, user %d): history.Append() > %w",
			record.WordID, record.UserID, err)
	}

	return record, nil
}

// GetProgress returns the record for a (word, user) pair, creating it with
// defaults when the word has never been attempted.
func (r *Recorder) GetProgress(ctx context.Context, wordID, userID int64) (*Record, error) {
	if userID == 0 {
		return nil, fmt.Errorf("progress lookup for word %d has no user id", wordID)
	}
	unlock := r.lock(wordID, userID)
	defer unlock()

	record, _, err := r.loadOrCreate(ctx, wordID, userID, r.now())
	return record, err
}

// DueForReview returns the user's records whose next review date has passed,
// excluding completed words.
func (r *Recorder) DueForReview(ctx context.Context, userID int64) ([]Record, error) {
	records, err := r.records.FindDueForReview(ctx, userID, r.now())
	if err != nil {
		return nil, fmt.Errorf("records.FindDueForReview() > %w", err)
	}

	due := make([]Record, 0, len(records))
	for _, record := range records {
		if record.IsCompleted(r.scorer) {
			continue
		}
		due = append(due, record)
	}
	return due, nil
}

// loadOrCreate must run under the key lock. The created record is persisted
// before anything is scored against it: computing against a synthetic record
// that was never stored would silently fork state.
func (r *Recorder) loadOrCreate(ctx context.Context, wordID, userID int64, now time.Time) (*Record, bool, error) {
	record, err := r.records.FindByWordAndUser(ctx, wordID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("records.FindByWordAndUser() > %w", err)
	}
	if record != nil {
		if err := record.Validate(); err != nil {
			return nil, false, err
		}
		return record, false, nil
	}

	record = NewRecord(wordID, userID, now)
	if err := r.records.Create(ctx, record); err != nil {
		return nil, false, fmt.Errorf("records.Create() > %w", err)
	}
	return record, true, nil
}
