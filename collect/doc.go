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


// Package collect implements the concurrent patent collection pipeline.
//
// The pipeline fans keywords out over a worker pool. Each worker pages
// through title-search results, claims each publication number exactly
// once across all workers, fetches its abstract, and persists it through
// the patent repository. All API traffic flows through one shared
// rate-limited client, so worker count controls parallelism while the
// limiter controls request rate.
//
// A Run produces a Report: per-keyword outcomes, persisted and duplicate
// counts, and individual record failures classified as transient,
// permanent, or persistence errors. A failed keyword never aborts the
// run; other keywords continue.
package collect
