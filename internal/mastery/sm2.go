package mastery

import (
	"math"
	"time"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5

	// Interval after the first successful review following a reset.
	firstSuccessIntervalDays = 6
)

// ReviewState is the spaced repetition slice of a progress record. It is
// deliberately decoupled from the mastery score: review timing reacts only
// to correctness.
type ReviewState struct {
	IntervalDays int
	EaseFactor   float64
	NextReview   time.Time
}

// Reschedule applies an SM-2 style update for one answer and recomputes the
// next review date from now.
//
// Incorrect resets the interval to one day and lowers ease by 0.2 (floored).
// The first correct answer after a reset jumps to six days; later correct
// answers multiply the interval by the current ease and raise ease by 0.1
// (capped).
func Reschedule(state ReviewState, correct bool, now time.Time) ReviewState {
	if state.EaseFactor == 0 {
		state.EaseFactor = DefaultEaseFactor
	}

	if !correct {
		state.IntervalDays = 1
		state.EaseFactor = math.Max(MinEaseFactor, state.EaseFactor-0.2)
	} else {
		if state.IntervalDays <= 1 {
			state.IntervalDays = firstSuccessIntervalDays
		} else {
			state.IntervalDays = int(math.Round(float64(state.IntervalDays) * state.EaseFactor))
		}
		state.EaseFactor = math.Min(MaxEaseFactor, state.EaseFactor+0.1)
	}

	state.NextReview = now.AddDate(0, 0, state.IntervalDays)
	return state
}
