package progress

import "errors"

var (
	// ErrNotFound means the requested word or progress record has no backing
	// row. Callers may skip the word and continue.
	ErrNotFound = errors.New("progress record not found")

	// ErrInconsistentState means stored counters violate an invariant. The
	// record must not be scored against; it needs manual repair.
	ErrInconsistentState = errors.New("progress record state is inconsistent")

	// ErrStoreUnavailable wraps persistence failures. Nothing was committed;
	// the caller may retry the attempt.
	ErrStoreUnavailable = errors.New("progress store unavailable")
)
