// Package stats aggregates practice history into per-period statistics.
package stats

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/tango/internal/progress"
)

// PracticeStatistics holds statistics for a time period
type PracticeStatistics struct {
	Period          string // "2026-01" for monthly
	Attempts        int    // Total answers recorded in the period
	CorrectAttempts int    // Correct answers in the period
	WordsPracticed  int    // Unique words practiced in the period
	WordsMastered   int    // Words whose mastery was reached in the period
}

// Accuracy returns the fraction of correct answers, or 0 with no attempts.
func (s PracticeStatistics) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.CorrectAttempts) / float64(s.Attempts)
}

// AggregateStatistics holds totals across all periods with global unique counts
type AggregateStatistics struct {
	Attempts        int
	CorrectAttempts int
	WordsPracticed  int // Unique words practiced (deduplicated across periods)
	WordsMastered   int
}

// StatisticsResult holds both per-period and aggregate statistics
type StatisticsResult struct {
	Periods   []PracticeStatistics
	Aggregate AggregateStatistics
}

// periodData tracks counts per period
type periodData struct {
	attempts        int
	correctAttempts int
	wordsPracticed  map[int64]struct{}
	wordsMastered   int
}

// Calculate aggregates attempt logs and progress records into per-period
// statistics. It accepts optional year and month filters (0 means no filter).
// A word counts as mastered in the period its mastered timestamp falls into.
func Calculate(records []*progress.Record, logs []progress.AttemptLog, year, month int) StatisticsResult {
	stats := make(map[string]*periodData)
	globalWordsPracticed := make(map[int64]struct{})
	globalWordsMastered := 0

	wordByProgress := make(map[int64]int64, len(records))
	for _, record := range records {
		wordByProgress[record.ID] = record.WordID
	}

	for _, log := range logs {
		if log.AttemptedAt.IsZero() {
			continue
		}
		logYear := log.AttemptedAt.Year()
		logMonth := int(log.AttemptedAt.Month())
		if !matchesFilter(logYear, logMonth, year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", logYear, logMonth)
		ensurePeriodExists(stats, period)

		data := stats[period]
		data.attempts++
		if log.Correct {
			data.correctAttempts++
		}
		if wordID, ok := wordByProgress[log.ProgressID]; ok {
			data.wordsPracticed[wordID] = struct{}{}
			globalWordsPracticed[wordID] = struct{}{}
		}
	}

	for _, record := range records {
		if record.MasteredAt == nil {
			continue
		}
		masteredYear := record.MasteredAt.Year()
		masteredMonth := int(record.MasteredAt.Month())
		if !matchesFilter(masteredYear, masteredMonth, year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", masteredYear, masteredMonth)
		ensurePeriodExists(stats, period)
		stats[period].wordsMastered++
		globalWordsMastered++
	}

	return buildResult(stats, globalWordsPracticed, globalWordsMastered)
}

func ensurePeriodExists(stats map[string]*periodData, period string) {
	if stats[period] == nil {
		stats[period] = &periodData{
			wordsPracticed: make(map[int64]struct{}),
		}
	}
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}

func buildResult(stats map[string]*periodData, globalWordsPracticed map[int64]struct{}, globalWordsMastered int) StatisticsResult {
	periods := make([]PracticeStatistics, 0, len(stats))

	var totalAttempts, totalCorrect int
	for period, data := range stats {
		periods = append(periods, PracticeStatistics{
			Period:          period,
			Attempts:        data.attempts,
			CorrectAttempts: data.correctAttempts,
			WordsPracticed:  len(data.wordsPracticed),
			WordsMastered:   data.wordsMastered,
		})
		totalAttempts += data.attempts
		totalCorrect += data.correctAttempts
	}

	// Sort by period descending (newest first)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return StatisticsResult{
		Periods: periods,
		Aggregate: AggregateStatistics{
			Attempts:        totalAttempts,
			CorrectAttempts: totalCorrect,
			WordsPracticed:  len(globalWordsPracticed),
			WordsMastered:   globalWordsMastered,
		},
	}
}
