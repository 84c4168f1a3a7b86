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

import "errors"

// Domain validation errors
var (
	// ErrInvalidPatentRecord indicates a PatentRecord failed validation.
	ErrInvalidPatentRecord = errors.New("invalid patent record")

	// ErrEmptyNumber indicates the publication Number field is empty.
	ErrEmptyNumber = errors.New("publication number cannot be empty")

	// ErrInvalidEmbeddingStatus indicates an invalid EmbeddingStatus value.
	ErrInvalidEmbeddingStatus = errors.New("invalid embedding status")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
