package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"rental-terms-qa/pkg/config"
)

// newGigaChatServer serves the OAuth and completions endpoints; reply is the raw completions body.
func newGigaChatServer(t *testing.T, reply string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		expires := time.Now().Add(time.Hour).UnixMilli()
		json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_at": expires})
	})

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestLLMService(t *testing.T, srv *httptest.Server) *LLMService {
	t.Helper()
	svc, err := NewLLMService(&config.GigaChatConfig{
		APIKey:      "key",
		Model:       "GigaChat",
		Temperature: 0.3,
		AIURL:       srv.URL + "/chat/completions",
		OAuthURL:    srv.URL + "/oauth",
		Burst:       1,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLLMService: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(&config.GigaChatConfig{}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestLLMService_Generate(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr string
	}{
		{
			name:  "trims reply",
			reply: `{"choices":[{"message":{"role":"assistant","content":"  You must be 21.\n"}}]}`,
			want:  "You must be 21.",
		},
		{
			name:    "no choices",
			reply:   `{"choices":[]}`,
			wantErr: "no choices",
		},
		{
			name:    "blank content",
			reply:   `{"choices":[{"message":{"role":"assistant","content":" \n\t "}}]}`,
			wantErr: "empty content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestLLMService(t, newGigaChatServer(t, tt.reply, nil))

			got, err := svc.Generate(context.Background(), "What is the minimum age?")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLLMService_GenerateCancelledContext(t *testing.T) {
	var calls atomic.Int32
	srv := newGigaChatServer(t, `{"choices":[{"message":{"content":"ok"}}]}`, &calls)
	svc := newTestLLMService(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, "question")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limiter") {
		t.Errorf("expected the limiter to reject the call, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no completion request, got %d", calls.Load())
	}
}

func TestLLMService_GenerateServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_at": time.Now().Add(time.Hour).UnixMilli()})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := newTestLLMService(t, srv)
	if _, err := svc.Generate(context.Background(), "question"); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
