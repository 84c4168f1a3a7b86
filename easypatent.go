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


// Package easypatent collects patent abstracts from the EPO Open Patent
// Services API, persists them in an embedded store, and embeds them into
// a vector index for semantic search.
package easypatent

import (
	"io"
	"log/slog"

	"github.com/easypatent/easypatent/ai"
	"github.com/easypatent/easypatent/collect"
	"github.com/easypatent/easypatent/embed"
	"github.com/easypatent/easypatent/storage"
	"github.com/easypatent/easypatent/storage/badger"
)

// Store is the top-level handle over the patent database. It owns the
// storage backend and hands out the pipeline stages that operate on it.
type Store struct {
	backend *badger.Backend
	patents storage.PatentRepository
	logger  *slog.Logger
}

// Open opens (or creates) the patent database at filePath.
func Open(filePath string) (*Store, error) {
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	return &Store{
		backend: backend,
		patents: badger.NewPatentRepository(backend),
		logger:  slog.Default(),
	}, nil
}

// Close closes the repository and the underlying backend.
func (s *Store) Close() error {
	if err := s.patents.Close(); err != nil {
		s.logger.Error("error closing patent repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Patents returns the patent repository.
func (s *Store) Patents() storage.PatentRepository {
	return s.patents
}

// NewCollectionPipeline creates a collection pipeline persisting into
// this store.
func (s *Store) NewCollectionPipeline(searcher collect.Searcher, opts ...collect.Option) (*collect.Pipeline, error) {
	return collect.NewPipeline(searcher, s.patents, opts...)
}

// NewEmbeddingStage creates an embedding stage draining this store's
// pending records.
func (s *Store) NewEmbeddingStage(embedder ai.Embedder, vectors embed.VectorStore, config *embed.Config, progress io.Writer) (*embed.Stage, error) {
	return embed.NewStage(s.patents, embedder, vectors, config, progress)
}
