package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// embeddingServer answers /embeddings with one fixed-dimension vector per
// input, mirroring input order.
func embeddingServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input interface{} `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		count := 1
		if arr, ok := req.Input.([]interface{}); ok {
			count = len(arr)
		}

		type item struct {
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, count)
		for i := range data {
			vec := make([]float32, dim)
			vec[0] = float32(i + 1)
			data[i] = item{Embedding: vec}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
}

func TestEmbed_SingleVector(t *testing.T) {
	srv := embeddingServer(t, 8)
	defer srv.Close()

	client := NewOpenAICompatibleClient()
	cfg := EmbeddingConfig{BaseURL: srv.URL, APIKey: "test", Model: "test-embed"}

	vec, err := client.Embed(context.Background(), cfg, "what is docuchat?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("expected dimension 8, got %d", len(vec))
	}
}

func TestEmbed_EmptyInput(t *testing.T) {
	client := NewOpenAICompatibleClient()
	if _, err := client.Embed(context.Background(), EmbeddingConfig{}, "   "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestEmbedBatch_PreservesOrderAndLength(t *testing.T) {
	srv := embeddingServer(t, 4)
	defer srv.Close()

	client := NewOpenAICompatibleClient()
	cfg := EmbeddingConfig{BaseURL: srv.URL, APIKey: "test", Model: "test-embed"}

	texts := []string{"first chunk", "second chunk", "third chunk"}
	vecs, err := client.EmbedBatch(context.Background(), cfg, texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vecs))
	}
	for i, v := range vecs {
		if len(v) != 4 {
			t.Fatalf("vector %d has dimension %d, want 4", i, len(v))
		}
		if v[0] != float32(i+1) {
			t.Fatalf("vector %d out of order: marker %v", i, v[0])
		}
	}
}

func TestEmbedBatch_EmptyTextFailsWholeBatch(t *testing.T) {
	srv := embeddingServer(t, 4)
	defer srv.Close()

	client := NewOpenAICompatibleClient()
	cfg := EmbeddingConfig{BaseURL: srv.URL, APIKey: "test", Model: "test-embed"}

	if _, err := client.EmbedBatch(context.Background(), cfg, []string{"ok", " "}); err == nil {
		t.Fatalf("expected error when one input is empty")
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{1, 2}}},
		})
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient()
	cfg := EmbeddingConfig{BaseURL: srv.URL, APIKey: "test", Model: "test-embed"}

	if _, err := client.EmbedBatch(context.Background(), cfg, []string{"a", "b"}); err == nil {
		t.Fatalf("expected count mismatch error")
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient()
	cfg := EmbeddingConfig{BaseURL: srv.URL, APIKey: "test", Model: "test-embed"}

	if _, err := client.Embed(context.Background(), cfg, "question"); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}
