package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// FileSource provides files for bulk import.
type FileSource interface {
	// Root returns a human-readable location of the source.
	Root() string

	// Files returns every supported file in the source, ordered by name.
	// A file that cannot be read is returned with ReadError set rather than
	// failing the listing.
	Files(ctx context.Context) ([]domain.SourceFile, error)

	// Watch calls fn with each supported file that is created or modified
	// until ctx is cancelled. An error from fn is logged and watching continues.
	Watch(ctx context.Context, fn func(domain.SourceFile) error) error
}
