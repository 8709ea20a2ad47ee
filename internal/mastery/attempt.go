// Package mastery implements the scoring core: the mastery scorer, the
// learning phase state machine and the spaced repetition scheduler. All
// functions in this package are pure; persistence lives in internal/progress.
package mastery

import (
	"fmt"
	"time"
)

// Phase is the learning stage of a word. Phases only advance, never regress.
type Phase int

const (
	PhaseRecognition Phase = iota
	PhaseProduction
	PhaseApplication
)

func (p Phase) String() string {
	switch p {
	case PhaseRecognition:
		return "recognition"
	case PhaseProduction:
		return "production"
	case PhaseApplication:
		return "application"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// InputMode is how the answer was collected in a session. It correlates with
// Phase but is a separate concept: a session may drill a production-phase word
// with multiple choice while it warms up.
type InputMode int

const (
	InputMultipleChoice InputMode = iota
	InputFreeText
)

func (m InputMode) String() string {
	if m == InputFreeText {
		return "free_text"
	}
	return "multiple_choice"
}

// ContextType describes the form the word was presented in.
type ContextType string

const (
	ContextIsolated   ContextType = "isolated"
	ContextConjugated ContextType = "conjugated"
)

// Attempt is one answer to one word by one user. It is immutable once
// recorded and is the unit appended to the attempt history.
type Attempt struct {
	WordID           int64
	UserID           int64
	Phase            Phase
	InputMode        InputMode
	Correct          bool
	DifficultyWeight float64
	ResponseTimeMs   int64
	Confidence       float64 // 0 means unrated
	ContextType      ContextType
	ActivityName     string
	ResourceID       int64
	AttemptedAt      time.Time
}

// HistoryEntry is the slice of an attempt the scorer's rolling window needs.
type HistoryEntry struct {
	Correct          bool
	DifficultyWeight float64
	Confidence       float64
}

// PhaseCounters are lifetime attempt counters for a single phase.
type PhaseCounters struct {
	Attempts int
	Correct  int
}

// Accuracy returns correct/attempts, or 0 when the phase was never drilled.
func (c PhaseCounters) Accuracy() float64 {
	if c.Attempts == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempts)
}

// Snapshot is the counter state of a progress record after the current
// attempt has been counted. The scorer and phase machine read only this.
type Snapshot struct {
	TotalAttempts   int
	CorrectAttempts int
	Recognition     PhaseCounters
	Production      PhaseCounters
	Application     PhaseCounters
	LastPracticedAt time.Time
}
