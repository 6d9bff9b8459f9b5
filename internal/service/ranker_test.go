package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"rental-terms-qa/internal/models"

	"go.uber.org/zap"
)

func docsFromTexts(texts ...string) []models.RetrievableDocument {
	docs := make([]models.RetrievableDocument, len(texts))
	for i, text := range texts {
		docs[i] = models.RetrievableDocument{
			Country:     "Country",
			VehicleType: "Vehicle",
			Section:     models.SectionRentalInformation,
			Content:     text,
			FullText:    text,
		}
	}
	return docs
}

func TestRank_SortedDescendingWithStableTies(t *testing.T) {
	index := newKeywordIndex("age", "card", "fee")
	ranker := NewRanker(index, zap.NewNop())

	docs := docsFromTexts("age age card", "age", "card", "age")
	results, err := ranker.Rank(context.Background(), "age", docs, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i].SimilarityScore > results[i-1].SimilarityScore {
			t.Errorf("results not sorted at %d: %f > %f", i, results[i].SimilarityScore, results[i-1].SimilarityScore)
		}
	}

	wantOrder := []string{"age", "age", "age age card", "card"}
	for i, want := range wantOrder {
		if results[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, results[i].Content)
		}
	}
	if math.Abs(results[0].SimilarityScore-1) > 1e-9 {
		t.Errorf("expected exact match to score 1, got %f", results[0].SimilarityScore)
	}
}

func TestRank_TiesKeepDecompositionOrder(t *testing.T) {
	index := newKeywordIndex("age")
	index.docVectors = [][]float32{{1}, {1}, {1}}
	ranker := NewRanker(index, zap.NewNop())

	docs := docsFromTexts("first", "second", "third")
	results, err := ranker.Rank(context.Background(), "age", docs, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, results[i].Content)
		}
	}
}

func TestRank_TopKBound(t *testing.T) {
	index := newKeywordIndex("age", "card")
	ranker := NewRanker(index, zap.NewNop())
	docs := docsFromTexts("age", "card", "age card", "nothing")

	for k := 1; k <= 6; k++ {
		results, err := ranker.Rank(context.Background(), "age", docs, k)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if want := min(k, len(docs)); len(results) != want {
			t.Errorf("k=%d: expected %d results, got %d", k, want, len(results))
		}
	}
}

func TestRank_NonPositiveTopKUsesDefault(t *testing.T) {
	index := newKeywordIndex("age")
	ranker := NewRanker(index, zap.NewNop())
	docs := docsFromTexts("a", "b", "c", "d", "e", "f", "g")

	results, err := ranker.Rank(context.Background(), "age", docs, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != DefaultTopK {
		t.Errorf("expected %d results, got %d", DefaultTopK, len(results))
	}
}

func TestRank_EmptyDocuments(t *testing.T) {
	ranker := NewRanker(newKeywordIndex("age"), zap.NewNop())

	results, err := ranker.Rank(context.Background(), "anything", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

func TestRank_EmptyQueryIsAccepted(t *testing.T) {
	ranker := NewRanker(newKeywordIndex("age"), zap.NewNop())
	docs := docsFromTexts("age", "card")

	results, err := ranker.Rank(context.Background(), "", docs, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.SimilarityScore != 0 {
			t.Errorf("expected zero score for zero query vector, got %f", r.SimilarityScore)
		}
	}
	if results[0].Content != "age" {
		t.Errorf("expected input order on all-zero scores, got %q first", results[0].Content)
	}
}

func TestRank_MinimumAgeQuery(t *testing.T) {
	records := []models.RentalTermsRecord{{
		Country:           "USA",
		VehicleType:       "Passenger vehicle",
		RentalInformation: "Minimum age is 21.",
	}}
	ranker := NewRanker(newKeywordIndex("age", "payment", "protection"), zap.NewNop())

	results, err := ranker.Rank(context.Background(), "What is the minimum age?", Decompose(records), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	top := results[0]
	if top.Section != models.SectionRentalInformation {
		t.Errorf("expected rental_information, got %s", top.Section)
	}
	if !containsString(top.Content, "21") {
		t.Errorf("expected content to mention 21, got %q", top.Content)
	}
}

func TestRank_IdenticalContentTopOne(t *testing.T) {
	index := newKeywordIndex("fee")
	ranker := NewRanker(index, zap.NewNop())

	docs := []models.RetrievableDocument{
		{Country: "Italy", VehicleType: "Van", Section: models.SectionExtras, Content: "Airport fee.", FullText: "Extras: Airport fee."},
		{Country: "Greece", VehicleType: "Van", Section: models.SectionExtras, Content: "Airport fee.", FullText: "Extras: Airport fee."},
	}

	results, err := ranker.Rank(context.Background(), "fee", docs, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Country != "Italy" {
		t.Errorf("expected first document on exact tie, got %s", results[0].Country)
	}
}

func TestRank_LoadFailureIsFatal(t *testing.T) {
	index := newKeywordIndex("age")
	index.loadErr = errors.New("model weights missing")
	ranker := NewRanker(index, zap.NewNop())

	_, err := ranker.Rank(context.Background(), "age", docsFromTexts("age"), 5)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if errors.Is(err, ErrRetrievalFailed) {
		t.Errorf("load failure must not be reported as a retrieval failure")
	}
}

func TestRank_EmbeddingFailuresDegrade(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*keywordIndex)
	}{
		{"query embedding fails", func(m *keywordIndex) { m.queryErr = errors.New("timeout") }},
		{"document embedding fails", func(m *keywordIndex) { m.docsErr = errors.New("connection reset") }},
		{"vector count mismatch", func(m *keywordIndex) { m.docVectors = [][]float32{{1}} }},
		{"dimension mismatch", func(m *keywordIndex) { m.docVectors = [][]float32{{1, 2}, {1, 2}} }},
		{"nan vector", func(m *keywordIndex) { m.docVectors = [][]float32{{float32(math.NaN())}, {1}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newKeywordIndex("age")
			tt.setup(index)
			ranker := NewRanker(index, zap.NewNop())

			results, err := ranker.Rank(context.Background(), "age", docsFromTexts("age", "card"), 5)
			if !errors.Is(err, ErrRetrievalFailed) {
				t.Fatalf("expected ErrRetrievalFailed, got %v", err)
			}
			if results == nil || len(results) != 0 {
				t.Errorf("expected empty non-nil results, got %#v", results)
			}
		})
	}
}

func TestRanker_Ready(t *testing.T) {
	index := newKeywordIndex("age")
	ranker := NewRanker(index, zap.NewNop())
	if ranker.Ready() {
		t.Fatal("expected not ready before first use")
	}
	if _, err := ranker.Rank(context.Background(), "age", nil, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranker.Ready() {
		t.Error("expected ready after first use")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1, false},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, false},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1, false},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0, false},
		{"dimension mismatch", []float32{1}, []float32{1, 2}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cosineSimilarity(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
