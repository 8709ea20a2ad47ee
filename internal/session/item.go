// Package session implements the round scheduler for one practice session:
// a bounded active word set, per-round turn ordering and rotation of mastered
// words at round boundaries.
package session

import (
	"github.com/at-ishikawa/tango/internal/mastery"
	"github.com/at-ishikawa/tango/internal/progress"
	"github.com/at-ishikawa/tango/internal/wordpool"
)

const (
	// ActiveWordCount is the default cap on concurrently drilled words.
	// One round presents each active word exactly once.
	ActiveWordCount = 10

	recognitionStreakTarget = 3
	productionStreakTarget  = 3
	freeTextMasteryGate     = 0.5
)

// Candidate pairs a pool word with its progress record. A nil Progress means
// the word has never been attempted.
type Candidate struct {
	Word     wordpool.Word
	Progress *progress.Record
}

func (c Candidate) masteryScore() float64 {
	if c.Progress == nil {
		return 0
	}
	return c.Progress.MasteryScore
}

// Item is one active-set entry: a word, its live progress record and the
// in-session streak counters. The streaks are session-local; they reset every
// session and are independent of the persisted phase and mastery.
type Item struct {
	Word     wordpool.Word
	Progress *progress.Record

	RecognitionStreak int
	ProductionStreak  int
}

// InputMode decides how the next turn presents this word. Words start as
// multiple choice and switch to free-entry production once recognition is
// complete. Derived on every read so it can never desync from the streak
// state.
func (i *Item) InputMode() mastery.InputMode {
	if i.recognitionComplete() {
		return mastery.InputFreeText
	}
	return mastery.InputMultipleChoice
}

// recognitionComplete reports that the word no longer needs multiple-choice
// drilling: either the session proved a recognition streak, or persisted
// mastery already clears the free-text gate. A word promoted by the gate
// skips multiple choice entirely, so the gate must count as a proven streak
// or the word could never rotate out.
func (i *Item) recognitionComplete() bool {
	if i.Progress != nil && i.Progress.MasteryScore >= freeTextMasteryGate {
		return true
	}
	return i.RecognitionStreak >= recognitionStreakTarget
}

// ReadyToRotate reports whether the session has proven both skills for this
// word: a session-local completion signal, distinct from persisted mastery.
func (i *Item) ReadyToRotate() bool {
	return i.recognitionComplete() &&
		i.ProductionStreak >= productionStreakTarget
}

// applyAnswer updates the streak matching the input mode the turn used. An
// incorrect answer resets that streak.
func (i *Item) applyAnswer(mode mastery.InputMode, correct bool) {
	switch mode {
	case mastery.InputMultipleChoice:
		if correct {
			i.RecognitionStreak++
		} else {
			i.RecognitionStreak = 0
		}
	case mastery.InputFreeText:
		if correct {
			i.ProductionStreak++
		} else {
			i.ProductionStreak = 0
		}
	}
}

// attemptPhase is the persisted phase the attempt is recorded against.
func (i *Item) attemptPhase() mastery.Phase {
	if i.Progress == nil {
		return mastery.PhaseRecognition
	}
	return i.Progress.CurrentPhase
}
