// Package mock provides test double implementations of AI service interfaces.
//
// This package contains a mock implementation of ai.Embedder for use in unit
// tests. The mock allows tests to run without external AI service dependencies
// and enables controlled, deterministic behavior.
//
// # Usage in Tests
//
//	mockEmbedder := mock.NewMockEmbedder()
//	vectors, err := mockEmbedder.EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	mockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// The default behavior returns deterministic vectors derived from a hash of
// the input text, so repeated calls for the same text produce the same vector.
package mock
