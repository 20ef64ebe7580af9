package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// IngestService turns text into stored, embedded chunks.
type IngestService interface {
	// Upload ingests each file independently. Unsupported files are skipped
	// and failing files are reported without aborting the others.
	Upload(ctx context.Context, files []domain.SourceFile, opts domain.IngestOptions) (*domain.UploadResult, error)

	// Import ingests every supported file of a source.
	Import(ctx context.Context, source driven.FileSource, opts domain.IngestOptions) (*domain.UploadResult, error)

	// AddText ingests one ad-hoc text under the given title.
	// Returns the number of chunks stored.
	AddText(ctx context.Context, title, text string, opts domain.IngestOptions) (int, error)

	// Watch re-ingests files of the source as they change, replacing their
	// previous chunks, until ctx is cancelled.
	Watch(ctx context.Context, source driven.FileSource, onFile func(domain.FileOutcome)) error
}
