package vectorize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the Cloudflare API root.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

const defaultTimeout = 30 * time.Second

var (
	// ErrAccountIDRequired indicates a missing Cloudflare account ID.
	ErrAccountIDRequired = errors.New("account ID is required")

	// ErrIndexNameRequired indicates a missing index name.
	ErrIndexNameRequired = errors.New("index name is required")

	// ErrAPIKeyRequired indicates a missing API token.
	ErrAPIKeyRequired = errors.New("API key is required")
)

// Vector is a single named vector with optional metadata.
type Vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// APIError describes a failed Vectorize API call.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("vectorize request failed: status %d: %v", e.StatusCode, e.Messages)
	}
	return fmt.Sprintf("vectorize request failed: status %d", e.StatusCode)
}

// Client inserts vectors into one Vectorize index.
// Client is safe for concurrent use.
type Client struct {
	accountID  string
	indexName  string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the Cloudflare API root. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return errors.New("base URL cannot be empty")
		}
		c.baseURL = baseURL
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// NewClient creates a client bound to one account and index.
func NewClient(accountID, indexName, apiKey string, opts ...Option) (*Client, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}
	if indexName == "" {
		return nil, ErrIndexNameRequired
	}
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		accountID:  accountID,
		indexName:  indexName,
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

type insertRequest struct {
	Vectors []Vector `json:"vectors"`
}

type apiResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Upsert writes vectors into the index. Inserting an ID that already
// exists overwrites the stored vector.
func (c *Client) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	body, err := json.Marshal(insertRequest{Vectors: vectors})
	if err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/vectorize/indexes/%s/insert",
		c.baseURL, c.accountID, c.indexName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed apiResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if unmarshalErr := json.Unmarshal(data, &parsed); unmarshalErr == nil && parsed.Success && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	for _, e := range parsed.Errors {
		apiErr.Messages = append(apiErr.Messages, fmt.Sprintf("%d: %s", e.Code, e.Message))
	}
	return apiErr
}
