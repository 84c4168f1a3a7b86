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


// Package ai provides the embedding abstraction used by the embedding stage.
//
// The embedding transform is deliberately a black box: the stage hands over
// abstract text and receives a vector. Everything else (model choice, API
// host, batching behavior of the provider) sits behind the Embedder
// interface so the pipeline and its tests never touch a real AI service.
//
// Implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles
//
// Public constructors (openai.NewEmbedder) return the INTERFACE type to
// prevent coupling to a concrete provider; mock constructors return the
// CONCRETE type so tests can inject behavior and assert call counts.
package ai
