package progress_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/tango/internal/mastery"
	mock_progress "github.com/at-ishikawa/tango/internal/mocks/progress"
	"github.com/at-ishikawa/tango/internal/progress"
)

var testNow = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func TestRecordAttemptNewWord(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := mock_progress.NewMockRepository(ctrl)
	history := mock_progress.NewMockHistoryRepository(ctrl)

	records.EXPECT().FindByWordAndUser(gomock.Any(), int64(7), int64(1)).Return(nil, nil)
	records.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, record *progress.Record) error {
			record.ID = 42
			return nil
		})
	history.EXPECT().FindRecentByProgress(gomock.Any(), int64(42), 7).Return(nil, nil)

	var updated *progress.Record
	records.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, record *progress.Record) error {
			updated = record
			return nil
		})

	var appended *progress.AttemptLog
	history.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, log *progress.AttemptLog) error {
			appended = log
			return nil
		})

	recorder := progress.NewRecorder(records, history, mastery.DefaultParams(), fixedNow)
	record, err := recorder.RecordAttempt(context.Background(), mastery.Attempt{
		WordID:           7,
		UserID:           1,
		Phase:            mastery.PhaseRecognition,
		InputMode:        mastery.InputMultipleChoice,
		Correct:          true,
		DifficultyWeight: 1,
		ActivityName:     "practice",
	})
	require.NoError(t, err)

	assert.Same(t, updated, record)
	assert.Equal(t, 1, record.TotalAttempts)
	assert.Equal(t, 1, record.CorrectAttempts)
	assert.Equal(t, 1, record.RecognitionAttempts)
	assert.Equal(t, 0.1, record.MasteryScore, "first correct attempt uses the fixed seed")
	assert.Equal(t, mastery.PhaseRecognition, record.CurrentPhase)
	assert.Equal(t, 6, record.ReviewIntervalDays, "first success jumps to six days")
	require.NotNil(t, record.NextReviewDate)
	assert.Equal(t, testNow.AddDate(0, 0, 6), *record.NextReviewDate)
	assert.Nil(t, record.MasteredAt)

	require.NotNil(t, appended)
	assert.Equal(t, int64(42), appended.ProgressID)
	assert.True(t, appended.Correct)
}

func TestRecordAttemptRequiresUserID(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := progress.NewRecorder(
		mock_progress.NewMockRepository(ctrl),
		mock_progress.NewMockHistoryRepository(ctrl),
		mastery.DefaultParams(), fixedNow)

	_, err := recorder.RecordAttempt(context.Background(), mastery.Attempt{WordID: 7})
	assert.Error(t, err, "the engine never defaults the user id")
}

func TestRecordAttemptInconsistentRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := mock_progress.NewMockRepository(ctrl)
	history := mock_progress.NewMockHistoryRepository(ctrl)

	corrupt := &progress.Record{
		ID: 3, WordID: 7, UserID: 1,
		TotalAttempts: 2, CorrectAttempts: 5,
	}
	records.EXPECT().FindByWordAndUser(gomock.Any(), int64(7), int64(1)).Return(corrupt, nil)

	recorder := progress.NewRecorder(records, history, mastery.DefaultParams(), fixedNow)
	_, err := recorder.RecordAttempt(context.Background(), mastery.Attempt{
		WordID: 7, UserID: 1, Correct: true, DifficultyWeight: 1,
	})
	assert.ErrorIs(t, err, progress.ErrInconsistentState, "corrupt counters are surfaced, never repaired")
}

func TestRecordAttemptStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := mock_progress.NewMockRepository(ctrl)
	history := mock_progress.NewMockHistoryRepository(ctrl)

	records.EXPECT().FindByWordAndUser(gomock.Any(), int64(7), int64(1)).
		Return(nil, fmt.Errorf("db.GetContext(progress_records) > %w: connection refused", progress.ErrStoreUnavailable))

	recorder := progress.NewRecorder(records, history, mastery.DefaultParams(), fixedNow)
	_, err := recorder.RecordAttempt(context.Background(), mastery.Attempt{
		WordID: 7, UserID: 1, Correct: true, DifficultyWeight: 1,
	})
	assert.ErrorIs(t, err, progress.ErrStoreUnavailable)
}

func TestRecordAttemptHistoryAppendFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := mock_progress.NewMockRepository(ctrl)
	history := mock_progress.NewMockHistoryRepository(ctrl)

	existing := progress.NewRecord(7, 1, testNow.AddDate(0, 0, -1))
	existing.ID = 42
	records.EXPECT().FindByWordAndUser(gomock.Any(), int64(7), int64(1)).Return(existing, nil)
	history.EXPECT().FindRecentByProgress(gomock.Any(), int64(42), 7).Return(nil, nil)
	records.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	appendErr := errors.New("disk full")
	history.EXPECT().Append(gomock.Any(), gomock.Any()).Return(appendErr)

	recorder := progress.NewRecorder(records, history, mastery.DefaultParams(), fixedNow)
	_, err := recorder.RecordAttempt(context.Background(), mastery.Attempt{
		WordID: 7, UserID: 1, Correct: true, DifficultyWeight: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appendErr)
	assert.Contains(t, err.Error(), "diverged")
}

func TestDueForReviewExcludesCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := mock_progress.NewMockRepository(ctrl)
	history := mock_progress.NewMockHistoryRepository(ctrl)

	due := testNow.AddDate(0, 0, -1)
	completed := progress.Record{
		WordID: 1, UserID: 1,
		TotalAttempts: 10, CorrectAttempts: 9,
		RecognitionAttempts: 5, RecognitionCorrect: 5,
		ProductionAttempts: 5, ProductionCorrect: 4,
		MasteryScore:   0.9,
		NextReviewDate: &due,
	}
	learning := progress.Record{
		WordID: 2, UserID: 1,
		TotalAttempts: 4, CorrectAttempts: 2,
		RecognitionAttempts: 4, RecognitionCorrect: 2,
		MasteryScore:   0.3,
		NextReviewDate: &due,
	}
	records.EXPECT().FindDueForReview(gomock.Any(), int64(1), testNow).
		Return([]progress.Record{completed, learning}, nil)

	recorder := progress.NewRecorder(records, history, mastery.DefaultParams(), fixedNow)
	got, err := recorder.DueForReview(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].WordID)
}

// memRepository and memHistory are in-memory stores for sequence tests.
type memRepository struct {
	nextID  int64
	records map[string]*progress.Record
}

func newMemRepository() *memRepository {
	return &memRepository{records: map[string]*progress.Record{}}
}

func (m *memRepository) key(wordID, userID int64) string {
	return fmt.Sprintf("%d/%d", wordID, userID)
}

func (m *memRepository) FindByWordAndUser(_ context.Context, wordID, userID int64) (*progress.Record, error) {
	record, ok := m.records[m.key(wordID, userID)]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *memRepository) FindByUser(_ context.Context, userID int64) ([]progress.Record, error) {
	var result []progress.Record
	for _, record := range m.records {
		if record.UserID == userID {
			result = append(result, *record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memRepository) FindDueForReview(_ context.Context, userID int64, now time.Time) ([]progress.Record, error) {
	var result []progress.Record
	for _, record := range m.records {
		if record.UserID == userID && record.NextReviewDate != nil && !record.NextReviewDate.After(now) {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (m *memRepository) Create(_ context.Context, record *progress.Record) error {
	m.nextID++
	record.ID = m.nextID
	copied := *record
	m.records[m.key(record.WordID, record.UserID)] = &copied
	return nil
}

func (m *memRepository) Update(_ context.Context, record *progress.Record) error {
	copied := *record
	m.records[m.key(record.WordID, record.UserID)] = &copied
	return nil
}

type memHistory struct {
	nextID int64
	logs   []progress.AttemptLog
}

func (m *memHistory) Append(_ context.Context, log *progress.AttemptLog) error {
	m.nextID++
	log.ID = m.nextID
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memHistory) FindRecentByProgress(_ context.Context, progressID int64, limit int) ([]progress.AttemptLog, error) {
	var result []progress.AttemptLog
	for i := len(m.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if m.logs[i].ProgressID == progressID {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

func (m *memHistory) FindByUser(_ context.Context, _ int64) ([]progress.AttemptLog, error) {
	return m.logs, nil
}

func TestRecordAttemptSequence(t *testing.T) {
	// Four recognition correct, then production: correct, correct,
	// incorrect, correct. Mirrors the documented scoring walkthrough.
	recorder := progress.NewRecorder(newMemRepository(), &memHistory{}, mastery.DefaultParams(), fixedNow)
	ctx := context.Background()

	answers := []struct {
		phase   mastery.Phase
		correct bool
	}{
		{mastery.PhaseRecognition, true},
		{mastery.PhaseRecognition, true},
		{mastery.PhaseRecognition, true},
		{mastery.PhaseRecognition, true},
		{mastery.PhaseProduction, true},
		{mastery.PhaseProduction, true},
		{mastery.PhaseProduction, false},
		{mastery.PhaseProduction, true},
	}

	var record *progress.Record
	lastPhase := mastery.PhaseRecognition
	for i, answer := range answers {
		var err error
		record, err = recorder.RecordAttempt(ctx, mastery.Attempt{
			WordID: 7, UserID: 1,
			Phase:            answer.phase,
			Correct:          answer.correct,
			DifficultyWeight: 1,
		})
		require.NoError(t, err, "attempt %d", i)

		assert.LessOrEqual(t, record.CorrectAttempts, record.TotalAttempts)
		assert.LessOrEqual(t, record.RecognitionCorrect, record.RecognitionAttempts)
		assert.LessOrEqual(t, record.ProductionCorrect, record.ProductionAttempts)
		assert.GreaterOrEqual(t, record.MasteryScore, 0.0)
		assert.LessOrEqual(t, record.MasteryScore, 1.0)
		assert.GreaterOrEqual(t, int(record.CurrentPhase), int(lastPhase), "phase never regresses")
		lastPhase = record.CurrentPhase

		if i == 3 {
			assert.Equal(t, mastery.PhaseProduction, record.CurrentPhase,
				"phase advances after the fourth recognition correct")
		}
	}

	assert.Equal(t, 8, record.TotalAttempts)
	assert.Equal(t, 7, record.CorrectAttempts)
	assert.InDelta(t, 0.6462, record.MasteryScore, 0.0001)
	assert.Nil(t, record.MasteredAt)
	assert.Less(t, record.MasteryScore, mastery.DefaultParams().MasteryThreshold)
}
