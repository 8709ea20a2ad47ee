package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tango/internal/wordpool"
)

func newWordsCommand() *cobra.Command {
	wordsCommand := &cobra.Command{
		Use:   "words",
		Short: "Manage the vocabulary word pool",
	}

	wordsCommand.AddCommand(newWordsImportCommand())
	wordsCommand.AddCommand(newWordsListCommand())

	return wordsCommand
}

func newWordsImportCommand() *cobra.Command {
	var resourceID int64

	command := &cobra.Command{
		Use:   "import <file>",
		Short: "Import words from a YAML word list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repository := wordpool.NewDBRepository(db)
			result, err := wordpool.ImportYamlFile(cmd.Context(), repository, args[0], resourceID)
			if err != nil {
				return fmt.Errorf("wordpool.ImportYamlFile() > %w", err)
			}

			fmt.Printf("Imported %d words (%d already present)\n", result.Created, result.Skipped)
			return nil
		},
	}
	command.Flags().Int64Var(&resourceID, "resource", 0, "resource id the words belong to")

	return command
}

func newWordsListCommand() *cobra.Command {
	var resourceID int64

	command := &cobra.Command{
		Use:   "list",
		Short: "List words in the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repository := wordpool.NewDBRepository(db)

			var words []wordpool.Word
			if cmd.Flags().Changed("resource") {
				words, err = repository.FindByResource(cmd.Context(), resourceID)
			} else {
				words, err = repository.FindAll(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to list words > %w", err)
			}

			if len(words) == 0 {
				fmt.Println("No words found.")
				return nil
			}
			for _, word := range words {
				fmt.Printf("%d\t%s\t%s\n", word.ID, word.Term, word.Meaning)
			}
			return nil
		},
	}
	command.Flags().Int64Var(&resourceID, "resource", 0, "only list words of this resource id")

	return command
}
