package service

import (
	"context"
	"strings"

	"rental-terms-qa/internal/models"
)

// --- mocks ---

// keywordIndex embeds text as keyword counts, one dimension per keyword.
type keywordIndex struct {
	keywords []string
	loadErr  error
	queryErr error
	docsErr  error
	// docVectors overrides document embeddings when set.
	docVectors [][]float32
	loaded     bool
}

func newKeywordIndex(keywords ...string) *keywordIndex {
	return &keywordIndex{keywords: keywords}
}

func (m *keywordIndex) Load(_ context.Context) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = true
	return nil
}

func (m *keywordIndex) Ready() bool { return m.loaded }

func (m *keywordIndex) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.vector(text), nil
}

func (m *keywordIndex) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if m.docsErr != nil {
		return nil, m.docsErr
	}
	if m.docVectors != nil {
		return m.docVectors, nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *keywordIndex) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(m.keywords))
	for i, kw := range m.keywords {
		v[i] = float32(strings.Count(lower, kw))
	}
	return v
}

type mockStore struct {
	records []models.RentalTermsRecord
	err     error
}

func (m *mockStore) FetchAll(_ context.Context) ([]models.RentalTermsRecord, error) {
	return m.records, m.err
}

type mockGenerator struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.answer, m.err
}

func usaRecord() models.RentalTermsRecord {
	return models.RentalTermsRecord{
		Country:            "USA",
		VehicleType:        "Passenger vehicle",
		RentalInformation:  "Minimum age is 21.",
		PaymentInformation: "Credit card required.",
		VAT:                "   ",
	}
}

func containsString(s, sub string) bool {
	return strings.Contains(s, sub)
}
