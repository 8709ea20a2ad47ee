package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/at-ishikawa/tango/internal/mastery"
	"github.com/at-ishikawa/tango/internal/progress"
)

// State is the lifecycle of one practice session.
type State int

const (
	StateInitializing State = iota
	StateInRound
	StateCompleted
)

// TurnKind tells the caller what happened after an answer was submitted.
type TurnKind int

const (
	// TurnNextWord: the round continues with the next item.
	TurnNextWord TurnKind = iota
	// TurnRoundBoundary: a round finished; rotations were applied and a new
	// round order was drawn.
	TurnRoundBoundary
	// TurnSessionCompleted: the active set and the pool are both exhausted.
	TurnSessionCompleted
)

// TurnResult is the outcome of one submitted answer.
type TurnResult struct {
	Kind TurnKind
	Next *Item // nil when the session completed
}

// Summary holds the final statistics of a session.
type Summary struct {
	RoundsCompleted int
	WordsMastered   int
	TotalTurns      int
}

//go:generate mockgen -source=scheduler.go -destination=../mocks/session/mock_recorder.go -package=mock_session

// AttemptRecorder records one answer against the progress store and returns
// the updated record. Implemented by progress.Recorder.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt mastery.Attempt) (*progress.Record, error)
}

// Config wires a Scheduler. Rand is required so round composition is
// reproducible in tests; the engine never reads ambient randomness. UserID is
// required: defaulting it is the outermost caller's business.
type Config struct {
	UserID          int64
	ActivityName    string
	ActiveWordCount int
	DueOnly         bool
	Params          mastery.Params
	Recorder        AttemptRecorder
	Rand            *rand.Rand
	Now             func() time.Time
}

// Scheduler owns the bounded active word set and the turn order of the
// current round. It is driven by one user's sequential answers and is not
// safe for concurrent use.
//
// The order snapshot holds references into the active set, so each turn sees
// live mastery state, but the snapshot itself is immutable for the round:
// removals and replacements queue until the boundary.
type Scheduler struct {
	config Config
	scorer *mastery.Scorer

	state  State
	pool   []Candidate
	active []*Item

	order []*Item
	turn  int

	pendingRemovals map[int64]bool
	pendingAdds     []Candidate

	roundsCompleted int
	wordsMastered   int
	totalTurns      int
}

// NewScheduler creates a Scheduler in the Initializing state.
func NewScheduler(config Config) (*Scheduler, error) {
	if config.UserID == 0 {
		return nil, fmt.Errorf("session scheduler requires a user id")
	}
	if config.Recorder == nil {
		return nil, fmt.Errorf("session scheduler requires an attempt recorder")
	}
	if config.Rand == nil {
		return nil, fmt.Errorf("session scheduler requires a random source")
	}
	if config.ActiveWordCount <= 0 {
		config.ActiveWordCount = ActiveWordCount
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Scheduler{
		config:          config,
		scorer:          mastery.NewScorer(config.Params),
		state:           StateInitializing,
		pendingRemovals: map[int64]bool{},
	}, nil
}

// Start seeds the active set from the word pool and opens the first round.
// An empty pool is not an error: the session simply starts completed.
func (s *Scheduler) Start(pool []Candidate) error {
	if s.state != StateInitializing {
		return fmt.Errorf("session already started")
	}

	s.pool = filterPool(pool, s.scorer, s.config.DueOnly, s.config.Now())

	var seed []Candidate
	seed, s.pool = selectCandidates(s.pool, s.config.ActiveWordCount, s.scorer, s.config.Rand)
	for _, candidate := range seed {
		s.active = append(s.active, &Item{Word: candidate.Word, Progress: candidate.Progress})
	}

	if len(s.active) == 0 {
		s.state = StateCompleted
		return nil
	}

	s.startRound()
	s.state = StateInRound
	slog.Debug("session started",
		slog.Int("active_words", len(s.active)),
		slog.Int("pool_words", len(s.pool)))
	return nil
}

// State returns the session lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// CurrentItem returns the item the current turn presents, or nil when the
// session is not in a round.
func (s *Scheduler) CurrentItem() *Item {
	if s.state != StateInRound || s.turn >= len(s.order) {
		return nil
	}
	return s.order[s.turn]
}

// ActiveItems exposes the current active set, for rendering choice options.
func (s *Scheduler) ActiveItems() []*Item {
	return s.active
}

// Summary returns the session statistics gathered so far.
func (s *Scheduler) Summary() Summary {
	return Summary{
		RoundsCompleted: s.roundsCompleted,
		WordsMastered:   s.wordsMastered,
		TotalTurns:      s.totalTurns,
	}
}

// SubmitAnswer records the answer for the current turn and advances the
// session. The active set never changes mid-round: a word that becomes
// masterable on turn three of a ten-turn round still takes its remaining
// turn, and is rotated out at the boundary.
func (s *Scheduler) SubmitAnswer(ctx context.Context, correct bool) (TurnResult, error) {
	if s.state != StateInRound {
		return TurnResult{}, fmt.Errorf("session is not in a round")
	}

	item := s.order[s.turn]
	mode := item.InputMode()

	record, err := s.config.Recorder.RecordAttempt(ctx, mastery.Attempt{
		WordID:           item.Word.ID,
		UserID:           s.config.UserID,
		Phase:            item.attemptPhase(),
		InputMode:        mode,
		Correct:          correct,
		DifficultyWeight: item.Word.DifficultyWeight(),
		ContextType:      mastery.ContextIsolated,
		ActivityName:     s.config.ActivityName,
		ResourceID:       item.Word.ResourceID,
		AttemptedAt:      s.config.Now(),
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("recorder.RecordAttempt(word %d) > %w", item.Word.ID, err)
	}
	item.Progress = record

	item.applyAnswer(mode, correct)
	s.totalTurns++

	if item.ReadyToRotate() && !s.pendingRemovals[item.Word.ID] {
		s.pendingRemovals[item.Word.ID] = true
		s.queueReplacement()
	}

	s.turn++
	if s.turn < len(s.order) {
		return TurnResult{Kind: TurnNextWord, Next: s.order[s.turn]}, nil
	}

	return s.closeRound(), nil
}

// queueReplacement draws the next pool word so it can enter the active set at
// the coming round boundary.
func (s *Scheduler) queueReplacement() {
	var drawn []Candidate
	drawn, s.pool = selectCandidates(s.pool, 1, s.scorer, s.config.Rand)
	s.pendingAdds = append(s.pendingAdds, drawn...)
}

// closeRound applies queued rotations and either opens the next round or
// completes the session.
func (s *Scheduler) closeRound() TurnResult {
	s.roundsCompleted++

	if len(s.pendingRemovals) > 0 {
		kept := s.active[:0]
		for _, item := range s.active {
			if s.pendingRemovals[item.Word.ID] {
				s.wordsMastered++
				slog.Debug("word rotated out",
					slog.Int64("word_id", item.Word.ID),
					slog.Int("round", s.roundsCompleted))
				continue
			}
			kept = append(kept, item)
		}
		s.active = kept
		s.pendingRemovals = map[int64]bool{}
	}

	for _, candidate := range s.pendingAdds {
		if len(s.active) >= s.config.ActiveWordCount {
			s.pool = append(s.pool, candidate)
			continue
		}
		s.active = append(s.active, &Item{Word: candidate.Word, Progress: candidate.Progress})
	}
	s.pendingAdds = nil

	// Top up in case removals outnumbered the queued replacements.
	if missing := s.config.ActiveWordCount - len(s.active); missing > 0 {
		var drawn []Candidate
		drawn, s.pool = selectCandidates(s.pool, missing, s.scorer, s.config.Rand)
		for _, candidate := range drawn {
			s.active = append(s.active, &Item{Word: candidate.Word, Progress: candidate.Progress})
		}
	}

	if len(s.active) == 0 {
		s.state = StateCompleted
		slog.Debug("session completed",
			slog.Int("rounds", s.roundsCompleted),
			slog.Int("turns", s.totalTurns))
		return TurnResult{Kind: TurnSessionCompleted}
	}

	s.startRound()
	return TurnResult{Kind: TurnRoundBoundary, Next: s.order[0]}
}

// startRound snapshots and shuffles the active set into a fresh round order.
func (s *Scheduler) startRound() {
	s.order = make([]*Item, len(s.active))
	copy(s.order, s.active)
	s.config.Rand.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.turn = 0
}
