package wordpool

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportResult summarizes one word-list import.
type ImportResult struct {
	Created int
	Skipped int
}

// ImportYamlFile loads a YAML word list and inserts the words that do not
// exist yet in the resource. Existing terms are skipped, never overwritten.
//
// The file format is a list of entries:
//
//	- term: 猫
//	  meaning: cat
//	  example: 猫が好きです
//	  difficulty: 1.2
func ImportYamlFile(ctx context.Context, repo Repository, path string, resourceID int64) (ImportResult, error) {
	var result ImportResult

	content, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var words []Word
	if err := yaml.Unmarshal(content, &words); err != nil {
		return result, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}

	for i, word := range words {
		word.Term = strings.TrimSpace(word.Term)
		word.Meaning = strings.TrimSpace(word.Meaning)
		if word.Term == "" || word.Meaning == "" {
			return result, fmt.Errorf("entry %d in %s is missing a term or meaning", i, path)
		}
		word.ResourceID = resourceID

		existing, err := repo.FindByTerm(ctx, resourceID, word.Term)
		if err != nil {
			return result, fmt.Errorf("repo.FindByTerm(%s) > %w", word.Term, err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		if err := repo.Create(ctx, &word); err != nil {
			return result, fmt.Errorf("repo.Create(%s) > %w", word.Term, err)
		}
		result.Created++
	}

	return result, nil
}
