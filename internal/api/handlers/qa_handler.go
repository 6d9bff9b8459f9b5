package handlers

import (
	"context"
	"errors"

	"rental-terms-qa/internal/dto"
	"rental-terms-qa/internal/models"
	"rental-terms-qa/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const failedMessage = "Failed to process your question. Please try again."

// QuestionAnswerer is the part of service.QAService the handlers need.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (*models.QueryAnswer, error)
	Ready() bool
}

type QAHandler struct {
	qaService QuestionAnswerer
	logger    *zap.Logger
}

func NewQAHandler(qaService QuestionAnswerer, logger *zap.Logger) *QAHandler {
	return &QAHandler{
		qaService: qaService,
		logger:    logger,
	}
}

// Ask godoc
// @Summary Ask a question about rental terms
// @Description Retrieves the most relevant rental terms sections and generates an answer
// @Tags qa
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Question"
// @Success 200 {object} dto.AskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/ask [post]
func (h *QAHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Success: false,
			Error:   "Invalid request body",
			Message: failedMessage,
		})
	}

	answer, err := h.qaService.Answer(c.UserContext(), req.Question)
	if err != nil {
		h.logger.Error("Failed to answer question", zap.String("question", req.Question), zap.Error(err))

		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrModelUnavailable) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Success: false,
			Error:   err.Error(),
			Message: failedMessage,
		})
	}

	return c.JSON(dto.NewAskResponse(answer))
}
