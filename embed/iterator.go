package embed

import (
	"context"

	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/storage"
)

// DefaultBatchSize is the default number of records fetched per batch.
const DefaultBatchSize = 100

// PendingIterator walks records in pending embedding state in batches.
//
// Each batch handed to the callback must leave pending state (flipped to
// embedded or failed) before the next fetch, otherwise the same records
// would be served forever; the iterator detects that and stops with
// ErrIterationStalled.
type PendingIterator struct {
	repo      storage.PatentRepository
	batchSize int
}

// NewPendingIterator creates an iterator over pending records.
// batchSize must be > 0; DefaultBatchSize is used otherwise.
func NewPendingIterator(repo storage.PatentRepository, batchSize int) *PendingIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &PendingIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach fetches pending records in batches, calling fn for each batch
// until no pending records remain. Iteration stops on the first error
// from fn. Context cancellation is checked between batches.
func (it *PendingIterator) ForEach(ctx context.Context, fn func([]*core.PatentRecord) error) error {
	lastLead := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := it.repo.GetByEmbeddingStatus(ctx, core.EmbeddingStatusPending, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if batch[0].Number == lastLead {
			return ErrIterationStalled
		}
		lastLead = batch[0].Number

		if err := fn(batch); err != nil {
			return err
		}
	}
}
