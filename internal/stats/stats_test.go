package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tango/internal/progress"
)

func logAt(progressID int64, correct bool, at time.Time) progress.AttemptLog {
	return progress.AttemptLog{ProgressID: progressID, Correct: correct, AttemptedAt: at}
}

func TestCalculate(t *testing.T) {
	january := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	february := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	records := []*progress.Record{
		{ID: 1, WordID: 100},
		{ID: 2, WordID: 200, MasteredAt: &february},
	}
	logs := []progress.AttemptLog{
		logAt(1, true, january),
		logAt(1, false, january),
		logAt(2, true, january),
		logAt(2, true, february),
		{ProgressID: 1, Correct: true}, // zero timestamp, ignored
	}

	result := Calculate(records, logs, 0, 0)

	require.Len(t, result.Periods, 2)
	assert.Equal(t, PracticeStatistics{
		Period:          "2026-02",
		Attempts:        1,
		CorrectAttempts: 1,
		WordsPracticed:  1,
		WordsMastered:   1,
	}, result.Periods[0], "periods are sorted newest first")
	assert.Equal(t, PracticeStatistics{
		Period:          "2026-01",
		Attempts:        3,
		CorrectAttempts: 2,
		WordsPracticed:  2,
	}, result.Periods[1])

	assert.Equal(t, AggregateStatistics{
		Attempts:        4,
		CorrectAttempts: 3,
		WordsPracticed:  2,
		WordsMastered:   1,
	}, result.Aggregate, "unique words are deduplicated across periods")
}

func TestCalculateWithFilters(t *testing.T) {
	january := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	december := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)

	records := []*progress.Record{{ID: 1, WordID: 100}}
	logs := []progress.AttemptLog{
		logAt(1, true, january),
		logAt(1, true, december),
	}

	result := Calculate(records, logs, 2026, 0)
	require.Len(t, result.Periods, 1)
	assert.Equal(t, "2026-01", result.Periods[0].Period)

	result = Calculate(records, logs, 2025, 12)
	require.Len(t, result.Periods, 1)
	assert.Equal(t, "2025-12", result.Periods[0].Period)

	result = Calculate(records, logs, 2024, 0)
	assert.Empty(t, result.Periods)
	assert.Equal(t, AggregateStatistics{}, result.Aggregate)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, PracticeStatistics{}.Accuracy())
	assert.Equal(t, 0.75, PracticeStatistics{Attempts: 4, CorrectAttempts: 3}.Accuracy())
}
