package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser decodes raw source files into text documents.
type Normaliser interface {
	// SupportedExtensions returns the file extensions this normaliser handles.
	SupportedExtensions() []string

	// Normalise decodes the file. The document title is the file name.
	// Content that is not valid text fails with domain.ErrValidation.
	Normalise(ctx context.Context, file domain.SourceFile) (*domain.Document, error)
}
