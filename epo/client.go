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


package epo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/easypatent/easypatent/retry"
)

const (
	// DefaultBaseURL is the OPS REST services root.
	DefaultBaseURL = "https://ops.epo.org/3.2/rest-services"

	// DefaultTokenURL is the OPS OAuth token endpoint.
	DefaultTokenURL = "https://ops.epo.org/3.2/auth/accesstoken"

	// DefaultPageSize is the number of references requested per search page.
	DefaultPageSize = 100

	// maxSearchRange is the highest result index OPS serves for a query.
	maxSearchRange = 2000

	defaultTimeout = 30 * time.Second
)

var (
	// ErrConsumerKeyRequired indicates a missing consumer key.
	ErrConsumerKeyRequired = errors.New("consumer key is required")

	// ErrConsumerSecretRequired indicates a missing consumer secret.
	ErrConsumerSecretRequired = errors.New("consumer secret is required")

	// ErrLimiterRequired indicates a nil rate limiter.
	ErrLimiterRequired = errors.New("rate limiter is required")
)

// Limiter gates outbound requests. Acquire blocks until a request may be
// sent or the context ends.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Client is a rate-limited client for the EPO Open Patent Services API.
// Authentication uses the OAuth2 client-credentials flow; tokens are cached
// and refreshed transparently before expiry.
//
// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    Limiter
	policy     retry.Policy
	logger     *slog.Logger

	credentials *clientcredentials.Config

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the OPS service root. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return errors.New("base URL cannot be empty")
		}
		c.baseURL = baseURL
		return nil
	}
}

// WithTokenURL overrides the OAuth token endpoint. Used by tests.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) error {
		if tokenURL == "" {
			return errors.New("token URL cannot be empty")
		}
		c.credentials.TokenURL = tokenURL
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API and token requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithPageSize sets the number of references requested per search page.
// Default is DefaultPageSize.
func WithPageSize(size int) Option {
	return func(c *Client) error {
		if size < 1 || size > maxSearchRange {
			return fmt.Errorf("page size must be between 1 and %d", maxSearchRange)
		}
		c.pageSize = size
		return nil
	}
}

// WithRetryPolicy sets the retry policy applied to each request. The
// policy's Retryable predicate is replaced with IsTransient.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) error {
		policy.Retryable = IsTransient
		c.policy = policy
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates an OPS client authenticating with the given consumer
// key and secret. Every request, including retries, first acquires a slot
// from the limiter.
func NewClient(consumerKey, consumerSecret string, limiter Limiter, opts ...Option) (*Client, error) {
	if consumerKey == "" {
		return nil, ErrConsumerKeyRequired
	}
	if consumerSecret == "" {
		return nil, ErrConsumerSecretRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}

	policy := retry.DefaultPolicy()
	policy.Retryable = IsTransient

	c := &Client{
		baseURL:    DefaultBaseURL,
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    limiter,
		policy:     policy,
		logger:     slog.Default().With("component", "epo-client"),
		credentials: &clientcredentials.Config{
			ClientID:     consumerKey,
			ClientSecret: consumerSecret,
			TokenURL:     DefaultTokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Search returns one page of publication references whose title matches
// keyword. The cursor is the 1-based index of the first result to return;
// pass 1 for the first page and the returned next cursor for subsequent
// pages. A next cursor of 0 means the result set is exhausted.
func (c *Client) Search(ctx context.Context, keyword string, cursor int) ([]PublicationRef, int, error) {
	if cursor < 1 {
		cursor = 1
	}
	if cursor > maxSearchRange {
		return nil, 0, nil
	}

	end := cursor + c.pageSize - 1
	if end > maxSearchRange {
		end = maxSearchRange
	}

	endpoint := fmt.Sprintf("%s/published-data/search?Range=%d-%d&q=%s",
		c.baseURL, cursor, end, url.QueryEscape("ti="+keyword))

	var envelope searchEnvelope
	if err := c.get(ctx, endpoint, &envelope); err != nil {
		return nil, 0, err
	}

	result := envelope.WorldPatentData.BiblioSearch
	references := result.SearchResult.PublicationReference

	refs := make([]PublicationRef, 0, len(references))
	for _, reference := range references {
		docID := reference.DocumentID
		number := docID.Country.Value + docID.DocNumber.Value + docID.Kind.Value
		if number == "" {
			continue
		}
		refs = append(refs, PublicationRef{Number: number, RefType: docID.Type})
	}

	total, _ := strconv.Atoi(result.TotalResultCount)

	next := 0
	switch {
	case len(refs) == 0 || end >= maxSearchRange:
		// exhausted
	case total > 0:
		if end < total {
			next = end + 1
		}
	case len(references) == end-cursor+1:
		// No usable total count; a full page implies more may follow.
		next = end + 1
	}

	c.logger.Debug("search page fetched",
		"keyword", keyword, "range_begin", cursor, "range_end", end,
		"refs", len(refs), "total", total, "next", next)

	return refs, next, nil
}

// FetchAbstract retrieves the abstract for a single publication. English
// text is preferred when the document carries multiple languages. A
// document without an abstract yields an Abstract with an empty Abstract
// field and no error.
func (c *Client) FetchAbstract(ctx context.Context, ref PublicationRef) (*Abstract, error) {
	endpoint := fmt.Sprintf("%s/published-data/publication/%s/%s/abstract",
		c.baseURL, url.PathEscape(ref.RefType), url.PathEscape(ref.Number))

	var envelope abstractEnvelope
	if err := c.get(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}

	abstract := &Abstract{Number: ref.Number}

	documents := envelope.WorldPatentData.ExchangeDocuments.ExchangeDocument
	if len(documents) == 0 {
		return abstract, nil
	}

	document := documents[0]
	abstract.Title = pickLocalized(document.BibliographicData.InventionTitle)
	abstract.Abstract = pickAbstract(document.Abstract)
	return abstract, nil
}

// get performs a rate-limited, retried GET against endpoint and decodes
// the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.policy.Do(ctx, func() error {
		return c.attempt(ctx, endpoint, out)
	})
}

func (c *Client) attempt(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}

	resp, err := c.send(ctx, endpoint)
	if err != nil {
		return err
	}

	// An expired or revoked token yields 401. Discard the cached token
	// and retry the same request once with a fresh one.
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.invalidateToken()
		c.logger.Debug("access token rejected, refreshing", "endpoint", endpoint)

		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
		resp, err = c.send(ctx, endpoint)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ops response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, endpoint string) (*http.Response, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.httpClient.Do(req)
}

// token returns a valid access token, fetching or refreshing as needed.
func (c *Client) token() (string, error) {
	c.mu.Lock()
	source := c.tokens
	if source == nil {
		// The token source keeps this context for background refreshes,
		// so it must not be tied to a single request.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		source = c.credentials.TokenSource(tokenCtx)
		c.tokens = source
	}
	c.mu.Unlock()

	tok, err := source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", &APIError{
				StatusCode: retrieveErr.Response.StatusCode,
				Endpoint:   c.credentials.TokenURL,
				Message:    string(retrieveErr.Body),
			}
		}
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	return tok.AccessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.tokens = nil
	c.mu.Unlock()
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
