package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig configures the Ollama embedding backend.
type OllamaConfig struct {
	BaseURL string
	Model   string
	// Timeout bounds a single embed call.
	Timeout time.Duration
	// PullTimeout bounds a model download on Load. Zero leaves it to the caller's context.
	PullTimeout time.Duration
	// AutoPull downloads the model on Load when the server does not have it yet.
	AutoPull bool
}

// OllamaClient embeds text through a local Ollama server.
type OllamaClient struct {
	baseURL     string
	model       string
	autoPull    bool
	pullTimeout time.Duration
	client      *http.Client
	// admin serves /api/pull, which may take far longer than an embed call
	admin *http.Client
}

func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "all-minilm"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OllamaClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		autoPull:    cfg.AutoPull,
		pullTimeout: cfg.PullTimeout,
		client:      &http.Client{Timeout: cfg.Timeout},
		admin:       &http.Client{},
	}
}

func (c *OllamaClient) Name() string { return "ollama/" + c.model }

type ollamaModelReq struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaEmbedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResp struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Load checks that the model is available, pulling it first when allowed.
func (c *OllamaClient) Load(ctx context.Context) error {
	err := c.show(ctx)
	if err == nil {
		return nil
	}
	if !c.autoPull || !errors.Is(err, ErrModelNotFound) {
		return err
	}

	pullCtx := ctx
	if c.pullTimeout > 0 {
		var cancel context.CancelFunc
		pullCtx, cancel = context.WithTimeout(ctx, c.pullTimeout)
		defer cancel()
	}
	if err := c.post(pullCtx, c.admin, "/api/pull", ollamaModelReq{Model: c.model, Stream: false}, nil); err != nil {
		return fmt.Errorf("ollama pull %s: %w", c.model, err)
	}
	return c.show(ctx)
}

func (c *OllamaClient) show(ctx context.Context) error {
	err := c.post(ctx, c.client, "/api/show", ollamaModelReq{Model: c.model}, nil)
	if err != nil {
		return fmt.Errorf("ollama show %s: %w", c.model, err)
	}
	return nil
}

// Embed sends all texts in a single /api/embed call.
func (c *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var result ollamaEmbedResp
	if err := c.post(ctx, c.client, "/api/embed", ollamaEmbedReq{Model: c.model, Input: texts}, &result); err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, v := range result.Embeddings {
		out[i] = toFloat32(v)
	}
	return out, nil
}

func (c *OllamaClient) post(ctx context.Context, client *http.Client, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request %s%s: %w", c.baseURL, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
