package embed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypatent/easypatent/ai/mock"
	"github.com/easypatent/easypatent/core"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestNewStage_Validation(t *testing.T) {
	repository := setupRepository(t)
	embedder := mock.NewMockEmbedder()
	store := &fakeStore{}

	_, err := NewStage(nil, embedder, store, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewStage(repository, nil, store, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewStage(repository, embedder, nil, nil, nil)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)
}

func TestStage_Run(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 7)

	store := &fakeStore{}
	var progress bytes.Buffer
	stage, err := NewStage(repository, mock.NewMockEmbedder(), store, testConfig(), &progress)
	require.NoError(t, err)

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Embedded)
	assert.Zero(t, stats.Failed)
	assert.Len(t, store.vectors(), 7)
	assert.Contains(t, progress.String(), "Embedding complete")

	counts, err := repository.CountByEmbeddingStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts[core.EmbeddingStatusEmbedded])
	assert.Zero(t, counts[core.EmbeddingStatusPending])
}

func TestStage_Run_MixedOutcomes(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 4)
	_, err := repository.Upsert(context.Background(), &core.PatentRecord{
		Number: "EP9999999A1",
		Title:  "No abstract",
	})
	require.NoError(t, err)

	store := &fakeStore{}
	stage, err := NewStage(repository, mock.NewMockEmbedder(), store, testConfig(), nil)
	require.NoError(t, err)

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Embedded)
	assert.Equal(t, 1, stats.Failed)

	counts, err := repository.CountByEmbeddingStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts[core.EmbeddingStatusEmbedded])
	assert.Equal(t, 1, counts[core.EmbeddingStatusFailed])
}

func TestStage_Run_NothingPending(t *testing.T) {
	repository := setupRepository(t)

	var progress bytes.Buffer
	stage, err := NewStage(repository, mock.NewMockEmbedder(), &fakeStore{}, testConfig(), &progress)
	require.NoError(t, err)

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Embedded)
	assert.Zero(t, stats.Failed)
	assert.Contains(t, progress.String(), "No pending patents")
}

func TestStage_Run_Canceled(t *testing.T) {
	repository := setupRepository(t)
	seedPending(t, repository, 3)

	stage, err := NewStage(repository, mock.NewMockEmbedder(), &fakeStore{}, testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = stage.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
