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


package core

import (
	"fmt"
	"time"
)

// ValidatePatentRecord validates a PatentRecord according to domain rules.
//
// Validation rules:
//   - Number must not be empty
//   - EmbedStatus, if set, must be a valid EmbeddingStatus
//   - CollectedAt, if set, must not be in the future
//
// NOT validated:
//   - Title and Abstract (the search service legitimately returns publications
//     without either; the embedding stage deals with empty abstracts)
//   - ContentHash (computed by the persistence layer)
func ValidatePatentRecord(record *PatentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidPatentRecord)
	}

	if record.Number == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPatentRecord, ErrEmptyNumber)
	}

	if record.EmbedStatus != 0 {
		if err := ValidateEmbeddingStatus(record.EmbedStatus); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPatentRecord, err)
		}
	}

	if !record.CollectedAt.IsZero() && !IsValidTimestamp(record.CollectedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidPatentRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEmbeddingStatus checks that the status is one of the defined values.
func ValidateEmbeddingStatus(status EmbeddingStatus) error {
	switch status {
	case EmbeddingStatusPending, EmbeddingStatusEmbedded, EmbeddingStatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidEmbeddingStatus, status)
	}
}

// IsValidTimestamp reports whether the timestamp is not in the future.
// A small clock-skew allowance of one minute is tolerated.
func IsValidTimestamp(t time.Time) bool {
	return !t.After(time.Now().Add(time.Minute))
}
