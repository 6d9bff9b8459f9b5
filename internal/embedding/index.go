package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// IndexOptions tunes how an Index embeds documents.
type IndexOptions struct {
	// BatchSize caps the number of texts sent in one backend call.
	BatchSize int
	// CacheDocuments reuses document vectors while the corpus snapshot is unchanged.
	CacheDocuments bool
}

// Index is the process-wide handle on the embedding model. The model is loaded lazily
// on first use, exactly once; the outcome of that load is kept for the process lifetime.
// After loading the Index is read-only apart from the optional document cache, so it is
// safe for concurrent use.
type Index struct {
	embedder Embedder
	opts     IndexOptions
	logger   *zap.Logger

	once    sync.Once
	loadErr error
	ready   atomic.Bool

	mu        sync.Mutex
	cacheKey  string
	cacheVecs [][]float32
}

func NewIndex(embedder Embedder, opts IndexOptions, logger *zap.Logger) *Index {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// Name returns the backend and model identifier.
func (i *Index) Name() string { return i.embedder.Name() }

// Ready reports whether the model finished loading successfully.
func (i *Index) Ready() bool { return i.ready.Load() }

// Load loads the model on the first call and returns the same result on every later call.
func (i *Index) Load(ctx context.Context) error {
	i.once.Do(func() {
		start := time.Now()
		i.logger.Info("Loading embedding model", zap.String("model", i.embedder.Name()))

		// a cancelled request must not poison the process-wide model
		if err := i.embedder.Load(context.WithoutCancel(ctx)); err != nil {
			i.loadErr = fmt.Errorf("load embedding model %s: %w", i.embedder.Name(), err)
			i.logger.Error("Embedding model failed to load", zap.Error(err))
			return
		}

		i.ready.Store(true)
		i.logger.Info("Embedding model loaded",
			zap.String("model", i.embedder.Name()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
	return i.loadErr
}

// EmbedQuery embeds a single query text.
func (i *Index) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := i.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds texts in batches. With caching enabled, an identical snapshot of
// texts returns the vectors computed last time.
func (i *Index) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if !i.opts.CacheDocuments {
		return i.embed(ctx, texts)
	}

	key := snapshotKey(i.embedder.Name(), texts)
	if vectors, ok := i.cached(key); ok {
		i.logger.Debug("Document embeddings served from cache", zap.Int("documents", len(texts)))
		return vectors, nil
	}

	// the backend call runs unlocked; concurrent misses may both embed, last one wins
	vectors, err := i.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	i.cacheKey = key
	i.cacheVecs = vectors
	i.mu.Unlock()
	return vectors, nil
}

func (i *Index) cached(key string) ([][]float32, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if key != i.cacheKey || i.cacheVecs == nil {
		return nil, false
	}
	return i.cacheVecs, true
}

func (i *Index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := i.Load(ctx); err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.opts.BatchSize {
		end := min(start+i.opts.BatchSize, len(texts))
		vectors, err := i.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), end-start)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// snapshotKey hashes the model name and the ordered texts of a corpus snapshot.
func snapshotKey(model string, texts []string) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, t := range texts {
		h.Write([]byte{0})
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}
