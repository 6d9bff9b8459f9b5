package dto

import "rental-terms-qa/internal/models"

type AskRequest struct {
	Question string `json:"question" example:"What is the minimum age to rent a car?"`
}

type SourceResponse struct {
	Country         string  `json:"country"`
	VehicleType     string  `json:"vehicle_type"`
	Section         string  `json:"section"`
	Content         string  `json:"content"`
	SimilarityScore float64 `json:"similarity_score"`
}

type AskResponse struct {
	Success      bool             `json:"success"`
	Question     string           `json:"question"`
	Answer       string           `json:"answer"`
	Status       string           `json:"status"`
	Error        string           `json:"error,omitempty"`
	SourcesCount int              `json:"sources_count"`
	Sources      []SourceResponse `json:"sources"`
	ContextUsed  string           `json:"context_used"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ReadyResponse struct {
	Ready bool   `json:"ready"`
	Model string `json:"model"`
}

// NewAskResponse converts a service answer into the API shape.
func NewAskResponse(answer *models.QueryAnswer) AskResponse {
	sources := make([]SourceResponse, 0, len(answer.Sources))
	for _, s := range answer.Sources {
		sources = append(sources, SourceResponse{
			Country:         s.Country,
			VehicleType:     s.VehicleType,
			Section:         string(s.Section),
			Content:         s.Content,
			SimilarityScore: s.SimilarityScore,
		})
	}

	return AskResponse{
		Success:      true,
		Question:     answer.Question,
		Answer:       answer.Answer,
		Status:       string(answer.Status),
		Error:        answer.Error,
		SourcesCount: len(sources),
		Sources:      sources,
		ContextUsed:  answer.ContextUsed,
	}
}
