package epo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypatent/easypatent/retry"
)

// nopLimiter admits every request immediately.
type nopLimiter struct {
	acquired atomic.Int64
}

func (l *nopLimiter) Acquire(ctx context.Context) error {
	l.acquired.Add(1)
	return ctx.Err()
}

func searchBody(total int, numbers ...string) string {
	refs := make([]map[string]any, len(numbers))
	for i, number := range numbers {
		refs[i] = map[string]any{
			"document-id": map[string]any{
				"@document-id-type": "docdb",
				"country":           map[string]any{"$": number[:2]},
				"doc-number":        map[string]any{"$": number[2 : len(number)-2]},
				"kind":              map[string]any{"$": number[len(number)-2:]},
			},
		}
	}

	var refValue any = refs
	if len(refs) == 1 {
		// OPS collapses single-element lists to a bare object.
		refValue = refs[0]
	}

	body, _ := json.Marshal(map[string]any{
		"ops:world-patent-data": map[string]any{
			"ops:biblio-search": map[string]any{
				"@total-result-count": fmt.Sprintf("%d", total),
				"ops:search-result": map[string]any{
					"ops:publication-reference": refValue,
				},
			},
		},
	})
	return string(body)
}

// newTestServer serves tokens at /token and delegates everything else.
// It returns the server and a counter of tokens issued.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var tokensIssued atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		username, password, ok := r.BasicAuth()
		require.True(t, ok, "token request must carry basic auth")
		require.Equal(t, "test-key", username)
		require.Equal(t, "test-secret", password)

		n := tokensIssued.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":1200}`, n)
	})
	mux.HandleFunc("/", handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokensIssued
}

func newTestClient(t *testing.T, server *httptest.Server, opts ...Option) (*Client, *nopLimiter) {
	t.Helper()

	limiter := &nopLimiter{}
	opts = append([]Option{
		WithBaseURL(server.URL),
		WithTokenURL(server.URL + "/token"),
		WithHTTPClient(server.Client()),
		WithRetryPolicy(retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}),
	}, opts...)

	client, err := NewClient("test-key", "test-secret", limiter, opts...)
	require.NoError(t, err)
	return client, limiter
}

func TestNewClient_Validation(t *testing.T) {
	limiter := &nopLimiter{}

	_, err := NewClient("", "secret", limiter)
	assert.ErrorIs(t, err, ErrConsumerKeyRequired)

	_, err = NewClient("key", "", limiter)
	assert.ErrorIs(t, err, ErrConsumerSecretRequired)

	_, err = NewClient("key", "secret", nil)
	assert.ErrorIs(t, err, ErrLimiterRequired)

	_, err = NewClient("key", "secret", limiter, WithPageSize(0))
	assert.Error(t, err)
}

func TestClient_Search(t *testing.T) {
	server, tokensIssued := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/published-data/search", r.URL.Path)
		assert.Equal(t, "1-100", r.URL.Query().Get("Range"))
		assert.Equal(t, "ti=solid state battery", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		fmt.Fprint(w, searchBody(150, "EP1000001A1", "US2000002B2"))
	})
	client, limiter := newTestClient(t, server)

	refs, next, err := client.Search(context.Background(), "solid state battery", 1)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, PublicationRef{Number: "EP1000001A1", RefType: "docdb"}, refs[0])
	assert.Equal(t, PublicationRef{Number: "US2000002B2", RefType: "docdb"}, refs[1])
	assert.Equal(t, 101, next, "next cursor should start after the requested range")
	assert.Equal(t, int64(1), tokensIssued.Load())
	assert.Equal(t, int64(1), limiter.acquired.Load())
}

func TestClient_Search_SingleResultObject(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody(1, "EP1000001A1"))
	})
	client, _ := newTestClient(t, server)

	refs, next, err := client.Search(context.Background(), "battery", 1)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "EP1000001A1", refs[0].Number)
	assert.Zero(t, next, "a page covering the full result set is the last page")
}

func TestClient_Search_LastPage(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "101-200", r.URL.Query().Get("Range"))
		fmt.Fprint(w, searchBody(150, "EP1000101A1", "EP1000102A1"))
	})
	client, _ := newTestClient(t, server)

	refs, next, err := client.Search(context.Background(), "battery", 101)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
	assert.Zero(t, next)
}

func TestClient_Search_CursorBeyondServiceCap(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	client, _ := newTestClient(t, server)

	refs, next, err := client.Search(context.Background(), "battery", 2001)
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Zero(t, next)
}

func TestClient_Search_RetriesTransient(t *testing.T) {
	var calls atomic.Int64
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, searchBody(1, "EP1000001A1"))
	})
	client, limiter := newTestClient(t, server)

	refs, _, err := client.Search(context.Background(), "battery", 1)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(2), limiter.acquired.Load(), "each retry must re-acquire the limiter")
}

func TestClient_Search_PermanentErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusBadRequest)
	})
	client, _ := newTestClient(t, server)

	_, _, err := client.Search(context.Background(), "battery", 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.False(t, apiErr.Transient())
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_Search_RefreshesRejectedToken(t *testing.T) {
	var calls atomic.Int64
	server, tokensIssued := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "invalid_access_token", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		fmt.Fprint(w, searchBody(1, "EP1000001A1"))
	})
	client, _ := newTestClient(t, server)

	refs, _, err := client.Search(context.Background(), "battery", 1)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
	assert.Equal(t, int64(2), tokensIssued.Load())
}

func TestClient_FetchAbstract(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/published-data/publication/docdb/EP1000001A1/abstract", r.URL.Path)
		fmt.Fprint(w, `{
			"ops:world-patent-data": {
				"exchange-documents": {
					"exchange-document": {
						"bibliographic-data": {
							"invention-title": [
								{"@lang": "de", "$": "Festkörperbatterie"},
								{"@lang": "en", "$": "Solid state battery"}
							]
						},
						"abstract": [
							{"@lang": "fr", "p": {"$": "Une batterie."}},
							{"@lang": "en", "p": [{"$": "A battery."}, {"$": "With a solid electrolyte."}]}
						]
					}
				}
			}
		}`)
	})
	client, _ := newTestClient(t, server)

	abstract, err := client.FetchAbstract(context.Background(), PublicationRef{Number: "EP1000001A1", RefType: "docdb"})
	require.NoError(t, err)
	assert.Equal(t, "EP1000001A1", abstract.Number)
	assert.Equal(t, "Solid state battery", abstract.Title)
	assert.Equal(t, "A battery.\nWith a solid electrolyte.", abstract.Abstract)
}

func TestClient_FetchAbstract_MissingAbstract(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ops:world-patent-data": {"exchange-documents": {"exchange-document": {}}}}`)
	})
	client, _ := newTestClient(t, server)

	abstract, err := client.FetchAbstract(context.Background(), PublicationRef{Number: "EP1000001A1", RefType: "docdb"})
	require.NoError(t, err)
	assert.Equal(t, "EP1000001A1", abstract.Number)
	assert.Empty(t, abstract.Abstract)
}

func TestClient_ContextCancellation(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody(1, "EP1000001A1"))
	})
	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.Search(ctx, "battery", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &APIError{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &APIError{StatusCode: http.StatusBadGateway}, true},
		{"request timeout", &APIError{StatusCode: http.StatusRequestTimeout}, true},
		{"not found", &APIError{StatusCode: http.StatusNotFound}, false},
		{"bad request", &APIError{StatusCode: http.StatusBadRequest}, false},
		{"canceled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
