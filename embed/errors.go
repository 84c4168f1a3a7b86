package embed

import "errors"

var (
	// ErrRepositoryRequired indicates a nil patent repository.
	ErrRepositoryRequired = errors.New("patent repository is required")

	// ErrEmbedderRequired indicates a nil embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrVectorStoreRequired indicates a nil vector store.
	ErrVectorStoreRequired = errors.New("vector store is required")

	// ErrIterationStalled indicates a batch that left its records in
	// pending state, which would loop forever.
	ErrIterationStalled = errors.New("pending iteration stalled: batch did not advance")
)
