package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tango/internal/cli"
	"github.com/at-ishikawa/tango/internal/config"
	"github.com/at-ishikawa/tango/internal/progress"
	"github.com/at-ishikawa/tango/internal/session"
	"github.com/at-ishikawa/tango/internal/wordpool"
)

func newPracticeCommand() *cobra.Command {
	var wordCount int
	var dueOnly bool
	var userID int64

	command := &cobra.Command{
		Use:   "practice",
		Short: "Practice vocabulary in rounds until words are mastered",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if userID == 0 {
				userID = cfg.Practice.DefaultUserID
			}
			if wordCount == 0 {
				wordCount = cfg.Practice.ActiveWordCount
			}

			return runPracticeSession(cmd.Context(), cfg, practiceOptions{
				userID:       userID,
				wordCount:    wordCount,
				dueOnly:      dueOnly || cfg.Practice.DueOnly,
				activityName: "practice",
			})
		},
	}
	command.Flags().IntVar(&wordCount, "count", 0, "number of words practiced at a time")
	command.Flags().BoolVar(&dueOnly, "due-only", false, "only practice words whose review is due")
	command.Flags().Int64Var(&userID, "user", 0, "user id to practice as")

	return command
}

type practiceOptions struct {
	userID       int64
	wordCount    int
	dueOnly      bool
	activityName string
}

func runPracticeSession(ctx context.Context, cfg *config.Config, opts practiceOptions) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	wordRepository := wordpool.NewDBRepository(db)
	words, err := wordRepository.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("wordRepository.FindAll() > %w", err)
	}
	if len(words) == 0 {
		fmt.Println("No words to practice. Import some first with 'tango words import'.")
		return nil
	}

	recordRepository := progress.NewDBRepository(db)
	historyRepository := progress.NewDBHistoryRepository(db)
	params := cfg.Scoring.Params()
	recorder := progress.NewRecorder(recordRepository, historyRepository, params, time.Now)

	pool, err := session.BuildCandidates(ctx, recordRepository, words, opts.userID)
	if err != nil {
		return fmt.Errorf("session.BuildCandidates() > %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	scheduler, err := session.NewScheduler(session.Config{
		UserID:          opts.userID,
		ActivityName:    opts.activityName,
		ActiveWordCount: opts.wordCount,
		DueOnly:         opts.dueOnly,
		Params:          params,
		Recorder:        recorder,
		Rand:            rng,
		Now:             time.Now,
	})
	if err != nil {
		return fmt.Errorf("session.NewScheduler() > %w", err)
	}
	if err := scheduler.Start(pool); err != nil {
		return fmt.Errorf("scheduler.Start() > %w", err)
	}
	if scheduler.State() == session.StateCompleted {
		fmt.Println("Nothing to practice right now.")
		return nil
	}

	fmt.Printf("Practice session started with %d words. Type 'quit' to exit.\n", len(scheduler.ActiveItems()))
	quiz := cli.NewPracticeQuizCLI(scheduler, words, rng)
	return quiz.Run(ctx)
}
