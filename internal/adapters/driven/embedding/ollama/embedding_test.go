package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)

	assert.Equal(t, 1024, NewEmbeddingService(Config{Model: "mxbai-embed-large"}).Dimensions())
	assert.Equal(t, 42, NewEmbeddingService(Config{Dimensions: 42}).Dimensions())
}

func TestEmbeddingService_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "Paris is the capital.", req.Prompt)

		_, _ = w.Write([]byte(`{"embedding":[1,0.5,-2]}`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	vec, err := svc.Embed(context.Background(), "Paris is the capital.")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5, -2}, vec)
}

func TestEmbeddingService_Embed_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`model not found`))
		}))
		defer server.Close()

		_, err := NewEmbeddingService(Config{BaseURL: server.URL}).Embed(context.Background(), "some text here")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model not found")
	})

	t.Run("malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"embedding":`))
		}))
		defer server.Close()

		_, err := NewEmbeddingService(Config{BaseURL: server.URL}).Embed(context.Background(), "some text here")
		assert.ErrorContains(t, err, "decode response")
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewEmbeddingService(Config{BaseURL: url}).Embed(context.Background(), "some text here")
		assert.ErrorContains(t, err, "send request")
	})
}

func TestEmbeddingService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

// truncatedError answers 500 with a body shorter than its Content-Length.
func truncatedError(w http.ResponseWriter, _ *http.Request) {
	conn, buf, err := w.(http.Hijacker).Hijack()
	if err != nil {
		return
	}
	defer conn.Close()
	_, _ = buf.WriteString("HTTP/1.1 500 Internal Server Error\r\nContent-Length: 100\r\n\r\nshort")
	_ = buf.Flush()
}

func TestEmbeddingService_UnreadableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(truncatedError))
	defer server.Close()
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "Paris is the capital.")
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "status 500")

	err = svc.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "failed to read body")
}
