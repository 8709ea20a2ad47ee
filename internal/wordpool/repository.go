package wordpool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrWordNotFound means the requested word has no backing row.
var ErrWordNotFound = errors.New("word not found")

//go:generate mockgen -source=repository.go -destination=../mocks/wordpool/mock_repository.go -package=mock_wordpool

// Repository defines operations for managing vocabulary words.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Word, error)
	FindAll(ctx context.Context) ([]Word, error)
	FindByResource(ctx context.Context, resourceID int64) ([]Word, error)
	FindByTerm(ctx context.Context, resourceID int64, term string) (*Word, error)
	Create(ctx context.Context, word *Word) error
}

// DBRepository implements Repository on sqlx.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindByID returns a word by id.
func (r *DBRepository) FindByID(ctx context.Context, id int64) (*Word, error) {
	var word Word
	err := r.db.GetContext(ctx, &word, "SELECT * FROM words WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("word %d: %w", id, ErrWordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(words) > %w", err)
	}
	return &word, nil
}

// FindAll returns every word in the pool.
func (r *DBRepository) FindAll(ctx context.Context) ([]Word, error) {
	var words []Word
	if err := r.db.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(all words) > %w", err)
	}
	return words, nil
}

// FindByResource returns all words in a resource.
func (r *DBRepository) FindByResource(ctx context.Context, resourceID int64) ([]Word, error) {
	var words []Word
	if err := r.db.SelectContext(ctx, &words,
		"SELECT * FROM words WHERE resource_id = ? ORDER BY id", resourceID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(words) > %w", err)
	}
	return words, nil
}

// FindByTerm returns the word with the given term within a resource, or nil
// if absent.
func (r *DBRepository) FindByTerm(ctx context.Context, resourceID int64, term string) (*Word, error) {
	var word Word
	err := r.db.GetContext(ctx, &word,
		"SELECT * FROM words WHERE resource_id = ? AND term = ?", resourceID, term)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(words by term) > %w", err)
	}
	return &word, nil
}

// Create inserts a new word and fills in its id.
func (r *DBRepository) Create(ctx context.Context, word *Word) error {
	now := time.Now()
	word.CreatedAt = now
	word.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO words (term, meaning, example, difficulty, resource_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		word.Term, word.Meaning, word.Example, word.Difficulty, word.ResourceID,
		word.CreatedAt, word.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert word) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	word.ID = id
	return nil
}
