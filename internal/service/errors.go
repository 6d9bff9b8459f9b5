package service

import "errors"

var (
	// ErrModelUnavailable means the embedding model could not be loaded. It is fatal for the process.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrRetrievalFailed means ranking degraded to zero results.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrGenerationFailed means the language model did not produce an answer.
	ErrGenerationFailed = errors.New("generation failed")
)
