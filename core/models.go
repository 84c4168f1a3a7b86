package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// EmbeddingStatus tracks a patent record's progress through the embedding stage.
type EmbeddingStatus int

const (
	// EmbeddingStatusPending means the record has been persisted but not yet embedded.
	EmbeddingStatusPending EmbeddingStatus = iota + 1
	// EmbeddingStatusEmbedded means a vector for the record exists in the vector store.
	EmbeddingStatusEmbedded
	// EmbeddingStatusFailed means embedding was attempted and gave up; EmbedError records why.
	EmbeddingStatusFailed
)

// String returns a human-readable name for the status.
func (s EmbeddingStatus) String() string {
	switch s {
	case EmbeddingStatusPending:
		return "pending"
	case EmbeddingStatusEmbedded:
		return "embedded"
	case EmbeddingStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PatentRecord represents a collected patent publication.
// The Number (country + doc number + kind code, e.g. "EP1234567A1") is the
// unique key in the document store and in the vector store.
type PatentRecord struct {
	Number      string
	Title       string
	Abstract    string
	Keywords    []string // Search keywords that surfaced this publication (merged on upsert)
	CollectedAt time.Time
	UpdatedAt   time.Time
	EmbedStatus EmbeddingStatus
	EmbedError  string // Reason the embedding stage gave up, empty otherwise
	ContentHash uint64 // BLAKE2b fingerprint of the abstract text
}

// HashContent generates a deterministic fingerprint from text content using
// BLAKE2b hashing. Identical content always produces an identical hash, so a
// re-collected abstract can be compared against the stored one without
// keeping the old text around.
func HashContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// HasKeyword reports whether the record already carries the given source keyword.
func (r *PatentRecord) HasKeyword(keyword string) bool {
	for _, k := range r.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}
