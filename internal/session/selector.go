package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/at-ishikawa/tango/internal/mastery"
	"github.com/at-ishikawa/tango/internal/progress"
	"github.com/at-ishikawa/tango/internal/wordpool"
)

// learningShare caps how many slots the learning tier may take, so a bounded
// working set still leaves room for fresh words.
const learningShare = 0.6

// ProgressReader is the slice of the progress layer the candidate builder
// needs.
type ProgressReader interface {
	FindByWordAndUser(ctx context.Context, wordID, userID int64) (*progress.Record, error)
}

// BuildCandidates pairs pool words with their progress records. Words without
// a record stay brand-new candidates.
func BuildCandidates(ctx context.Context, reader ProgressReader, words []wordpool.Word, userID int64) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(words))
	for _, word := range words {
		record, err := reader.FindByWordAndUser(ctx, word.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("reader.FindByWordAndUser(%d) > %w", word.ID, err)
		}
		candidates = append(candidates, Candidate{Word: word, Progress: record})
	}
	return candidates, nil
}

// filterPool drops completed words and, for due-only sessions, words that are
// not yet due. Brand-new words count as due.
func filterPool(pool []Candidate, scorer *mastery.Scorer, dueOnly bool, now time.Time) []Candidate {
	filtered := make([]Candidate, 0, len(pool))
	for _, candidate := range pool {
		if candidate.Progress != nil && candidate.Progress.IsCompleted(scorer) {
			continue
		}
		if dueOnly && candidate.Progress != nil &&
			candidate.Progress.NextReviewDate != nil &&
			candidate.Progress.NextReviewDate.After(now) {
			continue
		}
		filtered = append(filtered, candidate)
	}
	return filtered
}

// selectCandidates picks up to n words from the pool by tier priority and
// returns them along with the untouched remainder.
//
// Tiers: partially learned words first (capped at learningShare of n), then
// brand-new words, then review words, then already-mastered words as a last
// resort. Order within each tier is randomized with the injected source so
// sessions are reproducible under a seeded rand.
func selectCandidates(pool []Candidate, n int, scorer *mastery.Scorer, rng *rand.Rand) (selected, remaining []Candidate) {
	if n <= 0 || len(pool) == 0 {
		return nil, pool
	}

	var learning, fresh, review, mastered []Candidate
	for _, candidate := range pool {
		score := candidate.masteryScore()
		switch {
		case candidate.Progress != nil && candidate.Progress.IsCompleted(scorer):
			mastered = append(mastered, candidate)
		case score > 0 && score < freeTextMasteryGate:
			learning = append(learning, candidate)
		case score == 0:
			fresh = append(fresh, candidate)
		default:
			review = append(review, candidate)
		}
	}

	for _, tier := range [][]Candidate{learning, fresh, review, mastered} {
		rng.Shuffle(len(tier), func(i, j int) {
			tier[i], tier[j] = tier[j], tier[i]
		})
	}

	learningLimit := int(float64(n) * learningShare)
	if len(learning) > learningLimit {
		learning, fresh = learning[:learningLimit], append(fresh, learning[learningLimit:]...)
	}

	selected = make([]Candidate, 0, n)
	taken := map[int64]bool{}
	for _, tier := range [][]Candidate{learning, fresh, review, mastered} {
		for _, candidate := range tier {
			if len(selected) >= n {
				break
			}
			selected = append(selected, candidate)
			taken[candidate.Word.ID] = true
		}
	}

	remaining = make([]Candidate, 0, len(pool)-len(selected))
	for _, candidate := range pool {
		if !taken[candidate.Word.ID] {
			remaining = append(remaining, candidate)
		}
	}
	return selected, remaining
}
