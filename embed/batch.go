package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/easypatent/easypatent/ai"
	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/retry"
	"github.com/easypatent/easypatent/storage"
	"github.com/easypatent/easypatent/vectorize"
)

// VectorStore is the slice of the vector index the stage needs.
// *vectorize.Client satisfies it.
type VectorStore interface {
	Upsert(ctx context.Context, vectors []vectorize.Vector) error
}

// BatchProcessor embeds one batch of patent records and writes the
// vectors to the vector store.
type BatchProcessor struct {
	repo     storage.PatentRepository
	embedder ai.Embedder
	store    VectorStore
	policy   retry.Policy
	logger   *slog.Logger
}

// NewBatchProcessor creates a batch processor. The policy is applied to
// embedding calls and vector store writes.
func NewBatchProcessor(repo storage.PatentRepository, embedder ai.Embedder, store VectorStore, policy retry.Policy) *BatchProcessor {
	return &BatchProcessor{
		repo:     repo,
		embedder: embedder,
		store:    store,
		policy:   policy,
		logger:   slog.Default().With("component", "embed-batch"),
	}
}

// Process embeds a batch of records and advances each record's embedding
// status. Records without abstract text are marked failed immediately.
// An embedding or store failure that survives the retry budget marks the
// whole batch failed with the reason; processing errors never leave a
// record in pending state. The returned counts are records embedded and
// records marked failed.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.PatentRecord) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	embeddable := make([]*core.PatentRecord, 0, len(records))
	failed := 0
	for _, record := range records {
		if strings.TrimSpace(record.Abstract) == "" {
			if err := bp.repo.SetEmbeddingStatus(ctx, record.Number, core.EmbeddingStatusFailed, "empty abstract"); err != nil {
				return 0, failed, fmt.Errorf("mark empty abstract %s: %w", record.Number, err)
			}
			failed++
			continue
		}
		embeddable = append(embeddable, record)
	}

	if len(embeddable) == 0 {
		return 0, failed, nil
	}

	texts := make([]string, len(embeddable))
	for i, record := range embeddable {
		texts[i] = record.Abstract
	}

	var embeddings [][]float32
	err := bp.policy.Do(ctx, func() error {
		var embedErr error
		embeddings, embedErr = bp.embedder.EmbedTexts(ctx, texts)
		return embedErr
	})
	if err != nil {
		return 0, failed + len(embeddable), bp.failBatch(ctx, embeddable, fmt.Sprintf("embedding failed: %v", err))
	}

	if len(embeddings) != len(embeddable) {
		reason := fmt.Sprintf("embedding count mismatch: expected %d, got %d", len(embeddable), len(embeddings))
		return 0, failed + len(embeddable), bp.failBatch(ctx, embeddable, reason)
	}

	vectors := make([]vectorize.Vector, len(embeddable))
	for i, record := range embeddable {
		vectors[i] = vectorize.Vector{
			ID:     record.Number,
			Values: NormalizeVector(embeddings[i]),
			Metadata: map[string]string{
				"title":    record.Title,
				"keywords": strings.Join(record.Keywords, ","),
			},
		}
	}

	err = bp.policy.Do(ctx, func() error {
		return bp.store.Upsert(ctx, vectors)
	})
	if err != nil {
		return 0, failed + len(embeddable), bp.failBatch(ctx, embeddable, fmt.Sprintf("vector store write failed: %v", err))
	}

	for _, record := range embeddable {
		if err := bp.repo.SetEmbeddingStatus(ctx, record.Number, core.EmbeddingStatusEmbedded, ""); err != nil {
			return 0, failed, fmt.Errorf("mark embedded %s: %w", record.Number, err)
		}
	}

	return len(embeddable), failed, nil
}

// failBatch marks every record failed with the reason. Wrapped in a
// helper because a batch-level failure must still advance each record out
// of pending state.
func (bp *BatchProcessor) failBatch(ctx context.Context, records []*core.PatentRecord, reason string) error {
	bp.logger.Warn("batch failed", "records", len(records), "reason", reason)
	for _, record := range records {
		if err := bp.repo.SetEmbeddingStatus(ctx, record.Number, core.EmbeddingStatusFailed, reason); err != nil {
			return fmt.Errorf("mark failed %s: %w", record.Number, err)
		}
	}
	return nil
}
