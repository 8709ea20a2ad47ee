package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tango/internal/progress"
	"github.com/at-ishikawa/tango/internal/stats"
)

func newStatsCommand() *cobra.Command {
	var year, month int
	var userID int64

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show practice statistics per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if userID == 0 {
				userID = cfg.Practice.DefaultUserID
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			recordRepository := progress.NewDBRepository(db)
			historyRepository := progress.NewDBHistoryRepository(db)

			records, err := recordRepository.FindByUser(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("recordRepository.FindByUser() > %w", err)
			}
			logs, err := historyRepository.FindByUser(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("historyRepository.FindByUser() > %w", err)
			}

			recordPointers := make([]*progress.Record, len(records))
			for i := range records {
				recordPointers[i] = &records[i]
			}

			result := stats.Calculate(recordPointers, logs, year, month)
			printStatistics(result)
			return nil
		},
	}
	command.Flags().IntVar(&year, "year", 0, "filter by year, e.g. 2026")
	command.Flags().IntVar(&month, "month", 0, "filter by month (1-12), requires --year")
	command.Flags().Int64Var(&userID, "user", 0, "user id to show statistics for")

	return command
}

func printStatistics(result stats.StatisticsResult) {
	if len(result.Periods) == 0 {
		fmt.Println("No practice history for the selected period.")
		return
	}

	fmt.Printf("%-10s %10s %10s %10s %10s\n", "Period", "Answers", "Accuracy", "Words", "Mastered")
	for _, period := range result.Periods {
		fmt.Printf("%-10s %10d %9.0f%% %10d %10d\n",
			period.Period,
			period.Attempts,
			period.Accuracy()*100,
			period.WordsPracticed,
			period.WordsMastered,
		)
	}

	aggregate := result.Aggregate
	accuracy := 0.0
	if aggregate.Attempts > 0 {
		accuracy = float64(aggregate.CorrectAttempts) / float64(aggregate.Attempts)
	}
	fmt.Printf("%-10s %10d %9.0f%% %10d %10d\n",
		"Total", aggregate.Attempts, accuracy*100, aggregate.WordsPracticed, aggregate.WordsMastered)
}
