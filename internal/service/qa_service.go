package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rental-terms-qa/internal/models"
	"rental-terms-qa/pkg/config"

	"go.uber.org/zap"
)

const answerErrorTemplate = "Sorry, I encountered an error while processing your question. " +
	"Please try again or contact customer service. Error: %s"

// CorpusStore reads the full rental terms corpus.
type CorpusStore interface {
	FetchAll(ctx context.Context) ([]models.RentalTermsRecord, error)
}

// Generator turns a prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QAService answers questions by retrieving rental terms and asking the language model.
type QAService struct {
	store         CorpusStore
	ranker        *Ranker
	generator     Generator
	topK          int
	previewLength int
	logger        *zap.Logger
}

func NewQAService(store CorpusStore, ranker *Ranker, generator Generator, cfg *config.RAGConfig, logger *zap.Logger) *QAService {
	topK := cfg.TopK
	if topK < 1 {
		topK = DefaultTopK
	}
	previewLength := cfg.ContextPreviewLength
	if previewLength < 1 {
		previewLength = 500
	}

	return &QAService{
		store:         store,
		ranker:        ranker,
		generator:     generator,
		topK:          topK,
		previewLength: previewLength,
		logger:        logger,
	}
}

// Ready reports whether the embedding model has loaded and questions can be answered.
func (s *QAService) Ready() bool { return s.ranker.Ready() }

// Answer answers question with the configured number of sources.
func (s *QAService) Answer(ctx context.Context, question string) (*models.QueryAnswer, error) {
	return s.AnswerWithTopK(ctx, question, s.topK)
}

// AnswerWithTopK answers question using at most topK sources. Retrieval and generation
// failures are reported through the answer's Status and Error. The only error returned is
// one wrapping ErrModelUnavailable.
func (s *QAService) AnswerWithTopK(ctx context.Context, question string, topK int) (*models.QueryAnswer, error) {
	start := time.Now()
	var failures []string
	retrievalFailed := false

	records, err := s.store.FetchAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch rental terms", zap.Error(err))
		failures = append(failures, fmt.Errorf("%w: %w", ErrRetrievalFailed, err).Error())
		retrievalFailed = true
		records = nil
	}

	documents := Decompose(records)

	sources, err := s.ranker.Rank(ctx, question, documents, topK)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return nil, err
		}
		failures = append(failures, err.Error())
		retrievalFailed = true
		sources = []models.ScoredResult{}
	}

	contextText := FormatContext(sources)

	s.logger.Info("Context prepared",
		zap.Int("records", len(records)),
		zap.Int("documents", len(documents)),
		zap.Int("sources", len(sources)),
		zap.Int("context_length", len(contextText)),
	)

	answer := &models.QueryAnswer{
		Question:    question,
		Sources:     sources,
		ContextUsed: truncatePreview(contextText, s.previewLength),
		Status:      models.AnswerStatusOK,
	}

	text, err := s.generator.Generate(ctx, buildPrompt(contextText, question))
	switch {
	case err != nil:
		s.logger.Error("Failed to generate answer", zap.Error(err))
		failures = append(failures, fmt.Errorf("%w: %w", ErrGenerationFailed, err).Error())
		answer.Answer = fmt.Sprintf(answerErrorTemplate, err.Error())
		answer.Status = models.AnswerStatusGenerationFailed
	case retrievalFailed:
		answer.Answer = text
		answer.Status = models.AnswerStatusRetrievalFailed
	case len(sources) == 0:
		answer.Answer = text
		answer.Status = models.AnswerStatusNoData
	default:
		answer.Answer = text
	}
	answer.Error = strings.Join(failures, "; ")

	s.logger.Info("Question answered",
		zap.String("status", string(answer.Status)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return answer, nil
}

func buildPrompt(contextText, question string) string {
	return fmt.Sprintf(`
You are a helpful assistant for Sixt car rental. Answer the customer's question based on the provided rental terms information.

Rental Terms Information:
%s

Customer Question: %s

Instructions:
1. Answer the question based on the provided rental terms information
2. If the information is available in the provided context, provide a clear and helpful answer
3. If the information is not available in the provided context, say "I don't have specific information about that in the current rental terms. Please contact Sixt customer service for the most up-to-date information."
4. Be helpful, clear, and concise
5. If the question is about a specific country or vehicle type, mention that in your answer
6. Format your answer in a user-friendly way
7. Don't be overly cautious - if the information is there, provide it confidently

Answer:`, contextText, question)
}
