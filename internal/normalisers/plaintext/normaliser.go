package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// utf8BOM is stripped from the start of decoded content.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{domain.SupportedExtension}
}

// Normalise converts a raw text file to a document.
// The title is the base file name, extension included. Content must be
// valid UTF-8; a byte order mark is dropped and line endings become "\n".
func (n *Normaliser) Normalise(ctx context.Context, file domain.SourceFile) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := extractTitle(file.Name)
	if title == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}

	content := bytes.TrimPrefix(file.Content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrValidation, title)
	}

	return &domain.Document{
		Title:   title,
		Content: normaliseNewlines(string(content)),
	}, nil
}

// extractTitle returns the base name of a file path.
func extractTitle(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// normaliseNewlines converts CRLF and lone CR line endings to LF.
func normaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
