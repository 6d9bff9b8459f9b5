// Package app wires configuration, storage, the embedding index and the language model
// into a ready QAService shared by every entry point.
package app

import (
	"context"
	"fmt"

	"rental-terms-qa/internal/embedding"
	"rental-terms-qa/internal/repository"
	"rental-terms-qa/internal/service"
	"rental-terms-qa/pkg/config"
	"rental-terms-qa/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *pgxpool.Pool
	Repo   *repository.RentalTermsRepository
	Index  *embedding.Index
	LLM    *service.LLMService
	QA     *service.QAService
}

// New connects to the database and builds the question answering pipeline.
// The embedding model is not loaded here; see Preload.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := postgres.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.NewRentalTermsRepository(db, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	embedder, err := NewEmbedder(&cfg.Embedding)
	if err != nil {
		db.Close()
		return nil, err
	}
	index := embedding.NewIndex(embedder, embedding.IndexOptions{
		BatchSize:      cfg.Embedding.BatchSize,
		CacheDocuments: cfg.RAG.CacheEmbeddings,
	}, logger)

	llm, err := service.NewLLMService(&cfg.GigaChat, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	ranker := service.NewRanker(index, logger)
	qa := service.NewQAService(repo, ranker, llm, &cfg.RAG, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repo:   repo,
		Index:  index,
		LLM:    llm,
		QA:     qa,
	}, nil
}

// Preload loads the embedding model in the background so the first question does not pay for it.
func (a *App) Preload(ctx context.Context) {
	go func() {
		if err := a.Index.Load(ctx); err != nil {
			a.Logger.Error("Embedding model preload failed", zap.Error(err))
		}
	}()
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// NewEmbedder builds the embedding backend selected by cfg.Provider.
func NewEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama, "":
		return embedding.NewOllamaClient(embedding.OllamaConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			PullTimeout: cfg.PullTimeout,
			AutoPull:    cfg.AutoPull,
		}), nil
	case config.ProviderOpenAI:
		return embedding.NewOpenAIClient(embedding.OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKeyEnv: cfg.APIKeyEnv,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
