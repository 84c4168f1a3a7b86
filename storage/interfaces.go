package storage

import (
	"context"

	"github.com/easypatent/easypatent/core"
)

// PatentRepository provides operations for managing patent records.
// Implementations must be thread-safe and support concurrent access.
type PatentRepository interface {
	// Upsert writes a patent record keyed by its publication number.
	// It is idempotent: an upsert for a number already present is an update,
	// never a duplicate insert, and the later call's data wins. Source
	// keywords are merged into the stored keyword set. If the abstract text
	// changed since the last write, the embedding status is reset to pending
	// so the embedding stage picks the record up again.
	// Returns true if the record was created, false if it updated an
	// existing one.
	Upsert(ctx context.Context, record *core.PatentRecord) (bool, error)

	// Get retrieves a single record by publication number.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, number string) (*core.PatentRecord, error)

	// GetByEmbeddingStatus retrieves up to limit records with the given
	// embedding status, in publication-number order. A limit <= 0 means
	// no limit.
	GetByEmbeddingStatus(ctx context.Context, status core.EmbeddingStatus, limit int) ([]*core.PatentRecord, error)

	// SetEmbeddingStatus transitions a record's embedding status and records
	// the failure reason (empty for non-failure transitions).
	// Returns ErrNotFound if the record doesn't exist.
	SetEmbeddingStatus(ctx context.Context, number string, status core.EmbeddingStatus, reason string) error

	// CountByEmbeddingStatus returns the number of stored records per
	// embedding status.
	CountByEmbeddingStatus(ctx context.Context) (map[core.EmbeddingStatus]int, error)

	// Close closes the repository and releases resources.
	Close() error
}
