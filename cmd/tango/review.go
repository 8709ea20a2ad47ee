package main

import (
	"github.com/spf13/cobra"
)

func newReviewCommand() *cobra.Command {
	var wordCount int
	var userID int64

	command := &cobra.Command{
		Use:   "review",
		Short: "Practice only the words whose spaced-repetition review is due",
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
				dueOnly:      true,
				activityName: "review",
			})
		},
	}
	command.Flags().IntVar(&wordCount, "count", 0, "number of words practiced at a time")
	command.Flags().Int64Var(&userID, "user", 0, "user id to review as")

	return command
}
