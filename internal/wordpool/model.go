// Package wordpool provides the vocabulary word model, its repository and a
// YAML word-list importer.
package wordpool

import "time"

// Word is one learnable term. Identity fields are immutable once created;
// only annotations like the example sentence may change.
type Word struct {
	ID         int64     `db:"id" yaml:"-"`
	Term       string    `db:"term" yaml:"term"`
	Meaning    string    `db:"meaning" yaml:"meaning"`
	Example    string    `db:"example" yaml:"example,omitempty"`
	Difficulty float64   `db:"difficulty" yaml:"difficulty,omitempty"`
	ResourceID int64     `db:"resource_id" yaml:"-"`
	CreatedAt  time.Time `db:"created_at" yaml:"-"`
	UpdatedAt  time.Time `db:"updated_at" yaml:"-"`
}

// DifficultyWeight returns the scoring weight of the word, floored so easy
// words still count.
func (w Word) DifficultyWeight() float64 {
	if w.Difficulty < 0.5 {
		return 0.5
	}
	return w.Difficulty
}
