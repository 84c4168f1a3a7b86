package embed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypatent/easypatent/ai/mock"
	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/retry"
	"github.com/easypatent/easypatent/vectorize"
)

// fakeStore records upserted vectors and fails on demand.
type fakeStore struct {
	mu       sync.Mutex
	upserts  [][]vectorize.Vector
	failures int
}

func (s *fakeStore) Upsert(ctx context.Context, vectors []vectorize.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return errors.New("index unavailable")
	}
	s.upserts = append(s.upserts, vectors)
	return nil
}

func (s *fakeStore) vectors() []vectorize.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []vectorize.Vector
	for _, batch := range s.upserts {
		all = append(all, batch...)
	}
	return all
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}
}

func TestBatchProcessor_Process(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 3)

	records, err := repository.GetByEmbeddingStatus(context.Background(), core.EmbeddingStatusPending, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	store := &fakeStore{}
	processor := NewBatchProcessor(repository, mock.NewMockEmbedder(), store, testPolicy())

	embedded, failed, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 3, embedded)
	assert.Zero(t, failed)

	vectors := store.vectors()
	require.Len(t, vectors, 3)
	assert.Equal(t, "EP0000001A1", vectors[0].ID)
	assert.Len(t, vectors[0].Values, mock.DefaultDimensions)
	assert.InDelta(t, 1.0, magnitude(vectors[0].Values), 1e-3, "stored vectors are unit length")
	assert.Equal(t, "Title EP0000001A1", vectors[0].Metadata["title"])
	assert.Equal(t, "battery", vectors[0].Metadata["keywords"])

	counts, err := repository.CountByEmbeddingStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts[core.EmbeddingStatusEmbedded])
	assert.Zero(t, counts[core.EmbeddingStatusPending])
}

func TestBatchProcessor_Process_EmptyAbstract(t *testing.T) {
	repository := setupRepository(t)
	_, err := repository.Upsert(context.Background(), &core.PatentRecord{
		Number: "EP0000001A1",
		Title:  "No abstract",
	})
	require.NoError(t, err)

	records, err := repository.GetByEmbeddingStatus(context.Background(), core.EmbeddingStatusPending, 0)
	require.NoError(t, err)

	store := &fakeStore{}
	processor := NewBatchProcessor(repository, mock.NewMockEmbedder(), store, testPolicy())

	embedded, failed, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Zero(t, embedded)
	assert.Equal(t, 1, failed)
	assert.Empty(t, store.vectors())

	record, err := repository.Get(context.Background(), "EP0000001A1")
	require.NoError(t, err)
	assert.Equal(t, core.EmbeddingStatusFailed, record.EmbedStatus)
	assert.Equal(t, "empty abstract", record.EmbedError)
}

func TestBatchProcessor_Process_EmbedderFailure(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 2)

	records, err := repository.GetByEmbeddingStatus(context.Background(), core.EmbeddingStatusPending, 0)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	processor := NewBatchProcessor(repository, embedder, &fakeStore{}, testPolicy())

	embedded, failed, err := processor.Process(context.Background(), records)
	require.NoError(t, err, "a batch-level failure is recorded, not returned")
	assert.Zero(t, embedded)
	assert.Equal(t, 2, failed)

	record, err := repository.Get(context.Background(), "EP0000001A1")
	require.NoError(t, err)
	assert.Equal(t, core.EmbeddingStatusFailed, record.EmbedStatus)
	assert.Contains(t, record.EmbedError, "embedding failed")
}

func TestBatchProcessor_Process_StoreRetries(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 1)

	records, err := repository.GetByEmbeddingStatus(context.Background(), core.EmbeddingStatusPending, 0)
	require.NoError(t, err)

	store := &fakeStore{failures: 1}
	processor := NewBatchProcessor(repository, mock.NewMockEmbedder(), store, testPolicy())

	embedded, failed, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
	assert.Zero(t, failed)
	assert.Len(t, store.vectors(), 1)
}

func TestBatchProcessor_Process_StoreFailure(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 1)

	records, err := repository.GetByEmbeddingStatus(context.Background(), core.EmbeddingStatusPending, 0)
	require.NoError(t, err)

	store := &fakeStore{failures: 100}
	processor := NewBatchProcessor(repository, mock.NewMockEmbedder(), store, testPolicy())

	embedded, failed, err := processor.Process(context.Background(), records)
	require.NoError(t, err)
	assert.Zero(t, embedded)
	assert.Equal(t, 1, failed)

	record, err := repository.Get(context.Background(), "EP0000001A1")
	require.NoError(t, err)
	assert.Equal(t, core.EmbeddingStatusFailed, record.EmbedStatus)
	assert.Contains(t, record.EmbedError, "vector store write failed")
}
