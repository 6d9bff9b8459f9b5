package models

// AnswerStatus tells callers how an answer was produced without parsing its text.
type AnswerStatus string

const (
	AnswerStatusOK               AnswerStatus = "ok"
	AnswerStatusNoData           AnswerStatus = "no_data"
	AnswerStatusRetrievalFailed  AnswerStatus = "retrieval_failed"
	AnswerStatusGenerationFailed AnswerStatus = "generation_failed"
)

// QueryAnswer is the result of answering one question.
type QueryAnswer struct {
	Question    string         `json:"question"`
	Answer      string         `json:"answer"`
	Sources     []ScoredResult `json:"sources"`
	ContextUsed string         `json:"context_used"`
	Status      AnswerStatus   `json:"status"`
	Error       string         `json:"error,omitempty"`
}
