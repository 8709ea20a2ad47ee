// Package cli implements the interactive practice session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/tango/internal/mastery"
	"github.com/at-ishikawa/tango/internal/session"
	"github.com/at-ishikawa/tango/internal/wordpool"
)

var errEnd = errors.New("end")

const choiceCount = 4

// PracticeQuizCLI runs one interactive practice session against the
// round scheduler: it renders each turn, reads the answer and feeds the
// result back.
type PracticeQuizCLI struct {
	scheduler    *session.Scheduler
	words        []wordpool.Word
	rng          *rand.Rand
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

// NewPracticeQuizCLI creates a practice session CLI. The word list is the
// full candidate pool; it doubles as the source of wrong choices for
// multiple-choice turns.
func NewPracticeQuizCLI(
	scheduler *session.Scheduler,
	words []wordpool.Word,
	rng *rand.Rand,
) *PracticeQuizCLI {
	return &PracticeQuizCLI{
		scheduler:    scheduler,
		words:        words,
		rng:          rng,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

func (cli *PracticeQuizCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

func (cli *PracticeQuizCLI) Session(ctx context.Context) error {
	if cli.scheduler.State() == session.StateCompleted {
		cli.printSummary()
		return errEnd
	}

	item := cli.scheduler.CurrentItem()
	if item == nil {
		cli.printSummary()
		return errEnd
	}

	var correct bool
	var err error
	switch item.InputMode() {
	case mastery.InputFreeText:
		correct, err = cli.askFreeText(item)
	default:
		correct, err = cli.askMultipleChoice(item)
	}
	if err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return errEnd
	}

	cli.printFeedback(item.Word, correct)

	result, err := cli.scheduler.SubmitAnswer(ctx, correct)
	if err != nil {
		return fmt.Errorf("scheduler.SubmitAnswer() > %w", err)
	}

	switch result.Kind {
	case session.TurnRoundBoundary:
		summary := cli.scheduler.Summary()
		fmt.Fprintf(cli.stdoutWriter, "--- Round %d complete ---\n\n", summary.RoundsCompleted)
	case session.TurnSessionCompleted:
		cli.printSummary()
		return errEnd
	}
	return nil
}

// askMultipleChoice shows the term with shuffled meaning choices and reads
// a numeric answer.
func (cli *PracticeQuizCLI) askMultipleChoice(item *session.Item) (bool, error) {
	choices := cli.buildChoices(item.Word)

	fmt.Fprintln(cli.stdoutWriter)
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "What does %q mean?\n", item.Word.Term)
	for i, choice := range choices {
		fmt.Fprintf(cli.stdoutWriter, "  %d) %s\n", i+1, choice)
	}
	fmt.Fprint(cli.stdoutWriter, "Choice: ")

	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("error reading input: %w", err)
	}
	input = strings.TrimSpace(input)
	if isQuitCommand(input) {
		cli.printSummary()
		return false, errEnd
	}

	selected, err := strconv.Atoi(input)
	if err != nil || selected < 1 || selected > len(choices) {
		fmt.Fprintln(cli.stdoutWriter, "Answer with the number of a choice.")
		return false, nil
	}
	return choices[selected-1] == item.Word.Meaning, nil
}

// askFreeText asks for the meaning and compares it against the stored one,
// accepting any comma-separated alternative.
func (cli *PracticeQuizCLI) askFreeText(item *session.Item) (bool, error) {
	fmt.Fprintln(cli.stdoutWriter)
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s: ", item.Word.Term)

	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("error reading input: %w", err)
	}
	answer := strings.TrimSpace(input)
	if isQuitCommand(answer) {
		cli.printSummary()
		return false, errEnd
	}

	return matchesMeaning(answer, item.Word.Meaning), nil
}

func (cli *PracticeQuizCLI) printFeedback(word wordpool.Word, correct bool) {
	if correct {
		fmt.Fprint(cli.stdoutWriter, "✅ ")
		color.Green(`It's correct. The meaning of %s is "%s"`,
			cli.bold.Sprintf("%s", word.Term),
			cli.italic.Sprintf("%s", word.Meaning),
		)
	} else {
		fmt.Fprint(cli.stdoutWriter, "❌ ")
		color.Red(`It's wrong. The meaning of %s is "%s"`,
			cli.bold.Sprintf("%s", word.Term),
			cli.italic.Sprintf("%s", word.Meaning),
		)
	}
	if word.Example != "" {
		fmt.Fprintf(cli.stdoutWriter, "   Example: %s\n", word.Example)
	}
	fmt.Fprintln(cli.stdoutWriter)
}

func (cli *PracticeQuizCLI) printSummary() {
	summary := cli.scheduler.Summary()
	fmt.Fprintln(cli.stdoutWriter)
	_, _ = cli.bold.Fprintln(cli.stdoutWriter, "Session summary")
	fmt.Fprintf(cli.stdoutWriter, "  Rounds completed: %d\n", summary.RoundsCompleted)
	fmt.Fprintf(cli.stdoutWriter, "  Words mastered:   %d\n", summary.WordsMastered)
	fmt.Fprintf(cli.stdoutWriter, "  Total answers:    %d\n", summary.TotalTurns)
}

// buildChoices returns the correct meaning plus distractors drawn from the
// rest of the pool, shuffled.
func (cli *PracticeQuizCLI) buildChoices(word wordpool.Word) []string {
	choices := []string{word.Meaning}
	seen := map[string]struct{}{word.Meaning: {}}

	indexes := cli.rng.Perm(len(cli.words))
	for _, i := range indexes {
		if len(choices) >= choiceCount {
			break
		}
		meaning := cli.words[i].Meaning
		if _, ok := seen[meaning]; ok {
			continue
		}
		seen[meaning] = struct{}{}
		choices = append(choices, meaning)
	}

	cli.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}

func isQuitCommand(input string) bool {
	return input == "quit" || input == "exit"
}

// matchesMeaning compares a free-text answer against the stored meaning.
// Meanings like "to go, to leave" accept either alternative.
func matchesMeaning(answer, meaning string) bool {
	normalized := normalizeAnswer(answer)
	if normalized == "" {
		return false
	}
	if normalized == normalizeAnswer(meaning) {
		return true
	}
	for _, alternative := range strings.Split(meaning, ",") {
		if normalized == normalizeAnswer(alternative) {
			return true
		}
	}
	return false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
