package handlers

import (
	"rental-terms-qa/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const serviceName = "Rental Terms Q&A API"

type HealthHandler struct {
	qaService QuestionAnswerer
	model     string
}

func NewHealthHandler(qaService QuestionAnswerer, model string) *HealthHandler {
	return &HealthHandler{
		qaService: qaService,
		model:     model,
	}
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:  "healthy",
		Service: serviceName,
	})
}

// Ready godoc
// @Summary Readiness check
// @Description Reports whether the embedding model has finished loading
// @Tags health
// @Produce json
// @Success 200 {object} dto.ReadyResponse
// @Failure 503 {object} dto.ReadyResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := dto.ReadyResponse{
		Ready: h.qaService.Ready(),
		Model: h.model,
	}
	if !resp.Ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
