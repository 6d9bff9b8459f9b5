package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rental-terms-qa/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LLMService generates answers with GigaChat. Calls are throttled by a shared token bucket.
type LLMService struct {
	client  *gigago.Client
	model   *gigago.GenerativeModel
	limiter *rate.Limiter
	logger  *zap.Logger
}

func buildSystemInstruction() string {
	return `You are a customer support assistant for a car rental company. ` +
		`You answer strictly from the rental terms you are given and never invent prices, ages or conditions.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GIGACHAT_API_KEY is not set")
	}

	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	if cfg.AIURL != "" {
		opts = append(opts, gigago.WithCustomURLAI(cfg.AIURL))
	}
	if cfg.OAuthURL != "" {
		opts = append(opts, gigago.WithCustomURLOauth(cfg.OAuthURL))
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = cfg.Temperature

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	logger.Info("Using GigaChat model",
		zap.String("model", cfg.Model),
		zap.Float64("rate_limit", cfg.RateLimit),
	)

	return &LLMService{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
		logger:  logger,
	}, nil
}

// Generate sends prompt as a single user message and returns the trimmed reply.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("malformed response: no choices from LLM")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("malformed response: empty content from LLM")
	}

	s.logger.Debug("Answer generated", zap.Int("length", len(content)))
	return content, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
