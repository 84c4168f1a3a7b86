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


// Package epo provides a client for the European Patent Office Open
// Patent Services (OPS) REST API.
//
// The client covers the two operations the collection pipeline needs:
// title search over published data and abstract retrieval for a single
// publication. Authentication uses the OAuth2 client-credentials flow
// with transparent token caching and refresh. Every outbound request,
// including retries, passes through a caller-supplied rate limiter so
// the process-wide request ceiling holds regardless of concurrency.
//
// # Usage
//
//	limiter := ratelimit.New(10, time.Second)
//	client, err := epo.NewClient(consumerKey, consumerSecret, limiter)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	refs, next, err := client.Search(ctx, "battery", 1)
//	for _, ref := range refs {
//	    abstract, err := client.FetchAbstract(ctx, ref)
//	    ...
//	}
//
// Failures are classified by IsTransient: rate limiting, server errors
// and network timeouts are retried under the client's retry policy,
// while other client errors surface immediately.
package epo
