// Package service defines the error taxonomy shared by the pipeline.
// Degraded retrieval and insufficient evidence are never errors; those
// resolve to documented fallbacks or a structured rejection. Errors here
// cover the remaining cases: bad caller input and failing external services.
package service

import "errors"

var (
	// ErrInvalidInput is returned when input validation fails. Handlers map
	// it to a 400 response.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExternalService is returned when a call to an external service
	// (embeddings API, vector store) fails.
	ErrExternalService = errors.New("external service error")
)
