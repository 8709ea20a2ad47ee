package mastery

import (
	"math"
	"time"
)

// Params are the tunable constants of the scoring model. The relationships
// between the terms (weakest-link capping, mixed-mode gating, recency-weighted
// rolling average) are the contract; the literal values are product tuning.
type Params struct {
	MinAttemptsPerPhase   int
	MinCorrectPerPhase    int
	MasteryThreshold      float64
	PhaseAdvanceThreshold float64
	MixedModeRequirement  float64
	HistoryWindow         int

	BaseWeight            float64
	RollingWeight         float64
	UnqualifiedCredit     float64
	RecognitionOnlyCap    float64
	MixedModeCap          float64
	IncorrectPenalty      float64
	ConsecutivePenalty    float64
	RecencyStep           float64
	MinDifficultyWeight   float64
	DailyDecay            float64
	MinDecayFactor        float64
	FirstAttemptScore     float64
}

// DefaultParams returns the tuning the product ships with.
func DefaultParams() Params {
	return Params{
		MinAttemptsPerPhase:   4,
		MinCorrectPerPhase:    3,
		MasteryThreshold:      0.85,
		PhaseAdvanceThreshold: 0.75,
		MixedModeRequirement:  0.7,
		HistoryWindow:         8,

		BaseWeight:          0.4,
		RollingWeight:       0.6,
		UnqualifiedCredit:   0.4,
		RecognitionOnlyCap:  0.6,
		MixedModeCap:        0.75,
		IncorrectPenalty:    0.15,
		ConsecutivePenalty:  0.1,
		RecencyStep:         0.1,
		MinDifficultyWeight: 0.5,
		DailyDecay:          0.01,
		MinDecayFactor:      0.8,
		FirstAttemptScore:   0.1,
	}
}

// Scorer recomputes a word's mastery score from scratch on every attempt.
// The score is a pure function of the record's counters plus a short window
// of recent history, so it is always reproducible from stored data.
type Scorer struct {
	params Params
}

func NewScorer(params Params) *Scorer {
	return &Scorer{params: params}
}

// Score computes the mastery score for a record whose counters already
// include the new attempt. history holds the most recent prior attempts,
// newest first, at most HistoryWindow-1 entries. lastPracticedAt is the
// practice time before this attempt; the zero value means never practiced.
func (s *Scorer) Score(snapshot Snapshot, history []HistoryEntry, attempt Attempt, now time.Time) float64 {
	p := s.params

	// A single lifetime attempt has no history to roll, so the score is a
	// fixed seed rather than the general formula.
	if snapshot.TotalAttempts <= 1 {
		if attempt.Correct {
			return p.FirstAttemptScore
		}
		return 0
	}

	base := s.baseScore(snapshot)

	window := s.window(attempt, history)
	rolling := s.rollingScore(window)

	combined := p.BaseWeight*base + p.RollingWeight*rolling
	combined = s.applyIncorrectPenalty(combined, window)

	// High mastery is held back until both recognition and production are
	// independently proven.
	if combined >= p.MixedModeRequirement && !s.MixedModeCompetent(snapshot) {
		combined = math.Min(combined, p.MixedModeCap)
	}

	combined *= s.decayFactor(snapshot.LastPracticedAt, now)

	return clamp01(combined)
}

// MixedModeCompetent reports whether recognition and production accuracy both
// clear the mixed-mode requirement with qualifying volume.
func (s *Scorer) MixedModeCompetent(snapshot Snapshot) bool {
	p := s.params
	return s.qualified(snapshot.Recognition) &&
		snapshot.Recognition.Accuracy() >= p.MixedModeRequirement &&
		s.qualified(snapshot.Production) &&
		snapshot.Production.Accuracy() >= p.MixedModeRequirement
}

// Mastered reports whether a score grants the mastered stamp.
func (s *Scorer) Mastered(score float64, snapshot Snapshot) bool {
	return score >= s.params.MasteryThreshold && s.MixedModeCompetent(snapshot)
}

func (s *Scorer) qualified(c PhaseCounters) bool {
	return c.Attempts >= s.params.MinAttemptsPerPhase && c.Correct >= s.params.MinCorrectPerPhase
}

// phaseScore grants full accuracy once a phase has qualifying volume and only
// partial credit below it, so one lucky guess cannot look like competence.
func (s *Scorer) phaseScore(c PhaseCounters) float64 {
	if s.qualified(c) {
		return c.Accuracy()
	}
	return s.params.UnqualifiedCredit * c.Accuracy()
}

func (s *Scorer) baseScore(snapshot Snapshot) float64 {
	p := s.params
	recognition := s.phaseScore(snapshot.Recognition)
	production := s.phaseScore(snapshot.Production)

	switch {
	case s.qualified(snapshot.Recognition) && s.qualified(snapshot.Production):
		// The weaker of the two skills caps mastery.
		return math.Min(snapshot.Recognition.Accuracy(), snapshot.Production.Accuracy())
	case snapshot.Production.Attempts == 0:
		// Never produced: recognition alone cannot claim high mastery.
		return math.Min(recognition, p.RecognitionOnlyCap)
	default:
		return 0.4*recognition + 0.6*production
	}
}

// window assembles the rolling window, newest first: the new attempt plus up
// to HistoryWindow-1 prior entries.
func (s *Scorer) window(attempt Attempt, history []HistoryEntry) []HistoryEntry {
	window := make([]HistoryEntry, 0, s.params.HistoryWindow)
	window = append(window, HistoryEntry{
		Correct:          attempt.Correct,
		DifficultyWeight: attempt.DifficultyWeight,
		Confidence:       attempt.Confidence,
	})
	for _, entry := range history {
		if len(window) >= s.params.HistoryWindow {
			break
		}
		window = append(window, entry)
	}
	return window
}

func (s *Scorer) rollingScore(window []HistoryEntry) float64 {
	p := s.params
	var weighted, total float64
	for i, entry := range window {
		recency := 1 - p.RecencyStep*float64(i)
		if recency < p.RecencyStep {
			recency = p.RecencyStep
		}
		difficulty := math.Max(entry.DifficultyWeight, p.MinDifficultyWeight)
		confidence := entry.Confidence
		if confidence == 0 {
			confidence = 1
		}

		weight := recency * difficulty * confidence
		total += weight
		if entry.Correct {
			weighted += weight
		}
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func (s *Scorer) applyIncorrectPenalty(score float64, window []HistoryEntry) float64 {
	p := s.params

	incorrect := 0
	for _, entry := range window {
		if !entry.Correct {
			incorrect++
		}
	}
	score -= p.IncorrectPenalty * float64(incorrect)

	// Extra penalty per consecutive miss beyond the first, counted from the
	// newest entry.
	consecutive := 0
	for _, entry := range window {
		if entry.Correct {
			break
		}
		consecutive++
	}
	if consecutive > 1 {
		score -= p.ConsecutivePenalty * float64(consecutive-1)
	}

	return math.Max(score, 0)
}

func (s *Scorer) decayFactor(lastPracticedAt time.Time, now time.Time) float64 {
	if lastPracticedAt.IsZero() || !now.After(lastPracticedAt) {
		return 1
	}
	days := now.Sub(lastPracticedAt).Hours() / 24
	return math.Max(s.params.MinDecayFactor, 1-s.params.DailyDecay*days)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
