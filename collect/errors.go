package collect

import "errors"

var (
	// ErrSearcherRequired indicates a nil searcher was provided.
	ErrSearcherRequired = errors.New("searcher is required")

	// ErrRepositoryRequired indicates a nil patent repository was provided.
	ErrRepositoryRequired = errors.New("patent repository is required")

	// ErrNoKeywords indicates Run was called with an empty keyword list.
	ErrNoKeywords = errors.New("at least one keyword is required")
)
