// Package vectorize provides a minimal client for the Cloudflare
// Vectorize HTTP API, covering vector insertion into an existing index.
//
// Cloudflare does not publish a Go SDK for Vectorize, so the client
// speaks the REST API directly. Requests authenticate with an API token
// via bearer auth.
package vectorize
