// Copyright 2025 EasyPatent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/easypatent/easypatent/ai"
	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/retry"
	"github.com/easypatent/easypatent/storage"
)

// Config holds configuration for the embedding stage.
type Config struct {
	// BatchSize is the number of records embedded per batch.
	BatchSize int

	// ReportInterval is how often progress is reported (number of records).
	ReportInterval int

	// MaxRetries is the maximum number of attempts for embedding API
	// calls and vector store writes.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Stats summarizes one embedding run.
type Stats struct {
	// Embedded is the number of records embedded and written to the
	// vector store.
	Embedded int

	// Failed is the number of records marked failed.
	Failed int
}

// Stage drains pending patent records through the embedder into the
// vector store.
type Stage struct {
	repo      storage.PatentRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *PendingIterator
}

// NewStage creates an embedding stage.
// progress: where to write progress output (typically os.Stderr).
func NewStage(repo storage.PatentRepository, embedder ai.Embedder, store VectorStore, config *Config, progress io.Writer) (*Stage, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	policy := retry.Policy{
		MaxAttempts: config.MaxRetries,
		BaseDelay:   config.RetryDelay,
	}

	return &Stage{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, store, policy),
		iterator:  NewPendingIterator(repo, config.BatchSize),
	}, nil
}

// Run embeds every pending record and blocks until none remain or ctx
// ends. Records that fail are marked failed with a reason and skipped by
// subsequent batches, so the run always terminates.
func (s *Stage) Run(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByEmbeddingStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending records: %w", err)
	}

	total := counts[core.EmbeddingStatusPending]
	if total == 0 {
		fmt.Fprintf(s.progress, "No pending patents to embed\n")
		return &Stats{}, nil
	}

	fmt.Fprintf(s.progress, "Embedding %d pending patents (batch size: %d)\n",
		total, s.config.BatchSize)

	tracker := NewProgressTracker(s.progress, total, s.config.ReportInterval)
	stats := &Stats{}

	err = s.iterator.ForEach(ctx, func(records []*core.PatentRecord) error {
		embedded, failed, batchErr := s.processor.Process(ctx, records)
		stats.Embedded += embedded
		stats.Failed += failed
		tracker.Update(stats.Embedded + stats.Failed)
		return batchErr
	})
	if err != nil {
		return stats, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(s.progress, "Embedding complete. %d embedded, %d failed in %v (%.1f patents/sec)\n",
		stats.Embedded, stats.Failed, elapsed.Round(time.Second),
		float64(stats.Embedded+stats.Failed)/elapsed.Seconds())

	return stats, nil
}
