package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOpenAIServer(t *testing.T, reverse bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
			return
		}

		var req openAIEmbedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		var data []item
		for i := range req.Input {
			data = append(data, item{Index: i, Embedding: []float64{float64(i), 1}})
		}
		if reverse {
			for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
				data[i], data[j] = data[j], data[i]
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_LoadAndEmbed(t *testing.T) {
	t.Setenv("TEST_EMBEDDING_KEY", "test-key")
	srv := newOpenAIServer(t, true)

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKeyEnv: "TEST_EMBEDDING_KEY"})
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	vectors, err := c.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range vectors {
		if int(v[0]) != i {
			t.Errorf("vector %d placed out of order: %v", i, v)
		}
	}
}

func TestOpenAIClient_LoadMissingKey(t *testing.T) {
	t.Setenv("TEST_EMBEDDING_KEY", "")
	srv := newOpenAIServer(t, false)

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKeyEnv: "TEST_EMBEDDING_KEY"})
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIClient_LoadRejectedKey(t *testing.T) {
	t.Setenv("TEST_EMBEDDING_KEY", "wrong-key")
	srv := newOpenAIServer(t, false)

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKeyEnv: "TEST_EMBEDDING_KEY"})
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected probe failure for rejected key")
	}
}

func TestOpenAIClient_InvalidIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1]},{"index":0,"embedding":[2]}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL})
	if _, err := c.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for duplicate index")
	}
}
