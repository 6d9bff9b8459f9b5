package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"rental-terms-qa/internal/models"

	"go.uber.org/zap"
)

// DefaultTopK is used when a caller asks for fewer than one result.
const DefaultTopK = 5

// VectorIndex embeds queries and documents with one shared model.
type VectorIndex interface {
	Load(ctx context.Context) error
	Ready() bool
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Ranker scores documents against a query by cosine similarity of their embeddings.
type Ranker struct {
	index  VectorIndex
	logger *zap.Logger
}

func NewRanker(index VectorIndex, logger *zap.Logger) *Ranker {
	return &Ranker{
		index:  index,
		logger: logger,
	}
}

// Ready reports whether the embedding model has loaded.
func (r *Ranker) Ready() bool { return r.index.Ready() }

// Rank returns the topK documents most similar to query, best first. Documents are compared
// through their FullText. Equal scores keep the input order.
//
// A model that cannot load yields an error wrapping ErrModelUnavailable. Any later embedding
// or scoring failure is logged and yields an empty result with an error wrapping
// ErrRetrievalFailed; callers may carry on with the empty slice.
func (r *Ranker) Rank(ctx context.Context, query string, documents []models.RetrievableDocument, topK int) ([]models.ScoredResult, error) {
	if err := r.index.Load(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	if len(documents) == 0 {
		return []models.ScoredResult{}, nil
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	results, err := r.score(ctx, query, documents)
	if err != nil {
		r.logger.Error("Semantic search failed",
			zap.String("query", query),
			zap.Int("documents", len(documents)),
			zap.Error(err),
		)
		return []models.ScoredResult{}, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (r *Ranker) score(ctx context.Context, query string, documents []models.RetrievableDocument) ([]models.ScoredResult, error) {
	queryVec, err := r.index.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.FullText
	}

	docVecs, err := r.index.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(docVecs) != len(documents) {
		return nil, fmt.Errorf("got %d document vectors for %d documents", len(docVecs), len(documents))
	}

	results := make([]models.ScoredResult, len(documents))
	for i, doc := range documents {
		score, err := cosineSimilarity(queryVec, docVecs[i])
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if math.IsNaN(score) {
			return nil, fmt.Errorf("document %d: similarity is NaN", i)
		}
		results[i] = models.ScoredResult{
			RetrievableDocument: doc,
			SimilarityScore:     score,
		}
	}
	return results, nil
}
