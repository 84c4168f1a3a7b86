package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/storage"
)

// PatentRepository implements storage.PatentRepository for BadgerDB.
//
// Records are keyed by publication number. A secondary index keyed by
// embedding status backs the fetch-batch-by-status read path; it is
// maintained in the same transaction as the record write.
type PatentRepository struct {
	backend *Backend
}

var _ storage.PatentRepository = (*PatentRepository)(nil)

// NewPatentRepository creates a new PatentRepository.
func NewPatentRepository(backend *Backend) *PatentRepository {
	return &PatentRepository{backend: backend}
}

// Close releases repository resources. The backend is owned by the caller
// and stays open.
func (r *PatentRepository) Close() error {
	return nil
}

// Upsert writes a patent record keyed by its publication number.
func (r *PatentRepository) Upsert(ctx context.Context, record *core.PatentRecord) (bool, error) {
	if err := core.ValidatePatentRecord(record); err != nil {
		return false, err
	}

	created := false
	err := r.withWriteTx(func(tx *badger.Txn) error {
		// The transaction may be retried after a conflict; a record that
		// looked new on the first attempt may exist by now.
		created = false

		key := makePatentKey(record.Number)
		old, err := r.readPatent(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		record.ContentHash = core.HashContent(record.Abstract)
		record.UpdatedAt = now

		if old == nil {
			created = true
			if record.CollectedAt.IsZero() {
				record.CollectedAt = now
			}
			if record.EmbedStatus == 0 {
				record.EmbedStatus = core.EmbeddingStatusPending
			}
		} else {
			// Merge source keywords; the same publication legitimately
			// turns up under multiple search terms.
			for _, k := range old.Keywords {
				if !record.HasKeyword(k) {
					record.Keywords = append(record.Keywords, k)
				}
			}
			slices.Sort(record.Keywords)

			// First collection time survives updates.
			record.CollectedAt = old.CollectedAt

			if record.ContentHash != old.ContentHash {
				// Abstract changed, the stored vector is stale.
				record.EmbedStatus = core.EmbeddingStatusPending
				record.EmbedError = ""
			} else {
				record.EmbedStatus = old.EmbedStatus
				record.EmbedError = old.EmbedError
			}

			if old.EmbedStatus != record.EmbedStatus {
				if err := tx.Delete(makeStatusKey(old.EmbedStatus, record.Number)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set(key, storage.MarshalPatentRecord(record)); err != nil {
			return err
		}
		if err := tx.Set(makeStatusKey(record.EmbedStatus, record.Number), []byte(record.Number)); err != nil {
			return err
		}
		return tx.Commit()
	})

	return created, err
}

// Get retrieves a single record by publication number.
func (r *PatentRepository) Get(ctx context.Context, number string) (*core.PatentRecord, error) {
	var record *core.PatentRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readPatent(tx, makePatentKey(number))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetByEmbeddingStatus retrieves up to limit records with the given status.
func (r *PatentRepository) GetByEmbeddingStatus(ctx context.Context, status core.EmbeddingStatus, limit int) ([]*core.PatentRecord, error) {
	if err := core.ValidateEmbeddingStatus(status); err != nil {
		return nil, err
	}

	var records []*core.PatentRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeStatusPrefix(status)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			number, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			record, err := r.readPatent(tx, makePatentKey(string(number)))
			if err != nil {
				return err
			}
			if record == nil {
				// Dangling index entry; skip rather than fail the scan.
				continue
			}
			records = append(records, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SetEmbeddingStatus transitions a record's embedding status.
func (r *PatentRepository) SetEmbeddingStatus(ctx context.Context, number string, status core.EmbeddingStatus, reason string) error {
	if err := core.ValidateEmbeddingStatus(status); err != nil {
		return err
	}

	return r.withWriteTx(func(tx *badger.Txn) error {
		key := makePatentKey(number)
		record, err := r.readPatent(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		if record.EmbedStatus != status {
			if err := tx.Delete(makeStatusKey(record.EmbedStatus, number)); err != nil {
				return err
			}
		}

		record.EmbedStatus = status
		record.EmbedError = reason
		record.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalPatentRecord(record)); err != nil {
			return err
		}
		if err := tx.Set(makeStatusKey(status, number), []byte(number)); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// CountByEmbeddingStatus returns the number of stored records per status.
func (r *PatentRepository) CountByEmbeddingStatus(ctx context.Context) (map[core.EmbeddingStatus]int, error) {
	counts := make(map[core.EmbeddingStatus]int)
	statuses := []core.EmbeddingStatus{
		core.EmbeddingStatusPending,
		core.EmbeddingStatusEmbedded,
		core.EmbeddingStatusFailed,
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, status := range statuses {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makeStatusPrefix(status)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			n := 0
			for iter.Rewind(); iter.Valid(); iter.Next() {
				n++
			}
			iter.Close()
			counts[status] = n
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// withWriteTx runs fn in a read-write transaction, retrying on optimistic
// concurrency conflicts. Upserts from concurrent pipeline workers routinely
// touch the same keys, so ErrConflict is an expected outcome, not a failure.
func (r *PatentRepository) withWriteTx(fn func(tx *badger.Txn) error) error {
	for {
		err := r.backend.WithTx(fn, true)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

// readPatent reads and deserializes a record. Returns nil (no error) if the
// key does not exist.
func (r *PatentRepository) readPatent(tx *badger.Txn, key []byte) (*core.PatentRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalPatentRecord(data)
}
