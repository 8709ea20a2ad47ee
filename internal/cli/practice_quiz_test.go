package cli

import (
	"bufio"
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tango/internal/mastery"
	"github.com/at-ishikawa/tango/internal/progress"
	"github.com/at-ishikawa/tango/internal/session"
	"github.com/at-ishikawa/tango/internal/wordpool"
)

type fakeRecorder struct {
	attempts []mastery.Attempt
}

func (f *fakeRecorder) RecordAttempt(_ context.Context, attempt mastery.Attempt) (*progress.Record, error) {
	f.attempts = append(f.attempts, attempt)
	record := progress.NewRecord(attempt.WordID, attempt.UserID, attempt.AttemptedAt)
	record.CountAttempt(attempt)
	record.MasteryScore = 0.1
	return record, nil
}

func newQuizForTest(t *testing.T, recorder *fakeRecorder, words []wordpool.Word, input string) (*PracticeQuizCLI, *bytes.Buffer) {
	t.Helper()

	scheduler, err := session.NewScheduler(session.Config{
		UserID:          1,
		ActivityName:    "practice",
		ActiveWordCount: len(words),
		Params:          mastery.DefaultParams(),
		Recorder:        recorder,
		Rand:            rand.New(rand.NewSource(1)),
		Now:             func() time.Time { return time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	pool := make([]session.Candidate, 0, len(words))
	for _, w := range words {
		pool = append(pool, session.Candidate{Word: w})
	}
	require.NoError(t, scheduler.Start(pool))

	quiz := NewPracticeQuizCLI(scheduler, words, rand.New(rand.NewSource(1)))
	output := &bytes.Buffer{}
	quiz.stdinReader = bufio.NewReader(strings.NewReader(input))
	quiz.stdoutWriter = output
	return quiz, output
}

func TestSessionMultipleChoiceCorrectAnswer(t *testing.T) {
	recorder := &fakeRecorder{}
	words := []wordpool.Word{{ID: 1, Term: "hund", Meaning: "dog", Difficulty: 1}}
	quiz, output := newQuizForTest(t, recorder, words, "1\n")

	err := quiz.Session(context.Background())
	require.NoError(t, err)

	assert.Contains(t, output.String(), `What does "hund" mean?`)
	assert.Contains(t, output.String(), "1) dog")

	require.Len(t, recorder.attempts, 1)
	attempt := recorder.attempts[0]
	assert.True(t, attempt.Correct)
	assert.Equal(t, int64(1), attempt.WordID)
	assert.Equal(t, mastery.InputMultipleChoice, attempt.InputMode)
	assert.Equal(t, "practice", attempt.ActivityName)
}

func TestSessionInvalidChoiceCountsAsIncorrect(t *testing.T) {
	recorder := &fakeRecorder{}
	words := []wordpool.Word{{ID: 1, Term: "hund", Meaning: "dog", Difficulty: 1}}
	quiz, output := newQuizForTest(t, recorder, words, "not-a-number\n")

	err := quiz.Session(context.Background())
	require.NoError(t, err)

	assert.Contains(t, output.String(), "Answer with the number of a choice.")
	require.Len(t, recorder.attempts, 1)
	assert.False(t, recorder.attempts[0].Correct)
}

func TestSessionQuitEndsSession(t *testing.T) {
	recorder := &fakeRecorder{}
	words := []wordpool.Word{{ID: 1, Term: "hund", Meaning: "dog", Difficulty: 1}}
	quiz, output := newQuizForTest(t, recorder, words, "quit\n")

	err := quiz.Session(context.Background())
	assert.ErrorIs(t, err, errEnd)
	assert.Empty(t, recorder.attempts, "a quit turn is never recorded")
	assert.Contains(t, output.String(), "Session summary")
}

func TestBuildChoices(t *testing.T) {
	words := []wordpool.Word{
		{ID: 1, Term: "a", Meaning: "first"},
		{ID: 2, Term: "b", Meaning: "second"},
		{ID: 3, Term: "c", Meaning: "third"},
		{ID: 4, Term: "d", Meaning: "fourth"},
		{ID: 5, Term: "e", Meaning: "fifth"},
		{ID: 6, Term: "f", Meaning: "first"}, // duplicate meaning
	}
	quiz := NewPracticeQuizCLI(nil, words, rand.New(rand.NewSource(3)))

	choices := quiz.buildChoices(words[0])
	require.Len(t, choices, choiceCount)
	assert.Contains(t, choices, "first")

	seen := map[string]struct{}{}
	for _, choice := range choices {
		_, duplicate := seen[choice]
		assert.False(t, duplicate, "choices must be distinct")
		seen[choice] = struct{}{}
	}
}

func TestBuildChoicesSmallPool(t *testing.T) {
	words := []wordpool.Word{{ID: 1, Term: "a", Meaning: "first"}}
	quiz := NewPracticeQuizCLI(nil, words, rand.New(rand.NewSource(3)))

	choices := quiz.buildChoices(words[0])
	assert.Equal(t, []string{"first"}, choices)
}

func TestMatchesMeaning(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		meaning string
		want    bool
	}{
		{"exact match", "dog", "dog", true},
		{"case and whitespace", "  Dog ", "dog", true},
		{"comma alternative", "to leave", "to go, to leave", true},
		{"full meaning with alternatives", "to go, to leave", "to go, to leave", true},
		{"wrong answer", "cat", "dog", false},
		{"empty answer", "   ", "dog", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesMeaning(tt.answer, tt.meaning))
		})
	}
}
