package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters and services wrap them with fmt.Errorf("...: %w", err) so callers
// can classify failures with errors.Is.
var (
	// ErrValidation indicates bad caller input: a missing question, an empty
	// file set, text too short to embed, or an out-of-range parameter.
	ErrValidation = errors.New("validation error")

	// ErrEmbeddingService indicates the external embedding service failed
	// (timeout, quota, non-success status, malformed response).
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrLanguageModelService indicates the external language model failed.
	ErrLanguageModelService = errors.New("language model service error")

	// ErrDimensionMismatch indicates two vectors of different lengths were
	// compared or stored together. This is data corruption, never a skip.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDegenerateVector indicates a zero-magnitude vector was scored.
	ErrDegenerateVector = errors.New("degenerate vector")

	// ErrStorage indicates the document store failed.
	ErrStorage = errors.New("storage error")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Asking questions is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ErrorClass groups errors by how a request boundary should report them.
type ErrorClass string

// Error classes.
const (
	// ErrorClassClient is bad input; the caller should fix the request (4xx).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassService is an external collaborator failure (5xx).
	ErrorClassService ErrorClass = "service"

	// ErrorClassInternal is corrupt data or a programming error (5xx).
	ErrorClassInternal ErrorClass = "internal"
)

// ClassifyError maps an error to the class used in structured responses.
// Unknown errors are internal.
func ClassifyError(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return ErrorClassClient
	case errors.Is(err, ErrEmbeddingService),
		errors.Is(err, ErrLanguageModelService),
		errors.Is(err, ErrStorage),
		errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrLLMUnavailable):
		return ErrorClassService
	default:
		return ErrorClassInternal
	}
}
