package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions. Optional; the ask tool reports
	// domain.ErrLLMUnavailable without it.
	Ask driving.AskService

	// Retrieval ranks stored chunks for the search tool.
	Retrieval driving.RetrievalService

	// Document lists and deletes documents.
	Document driving.DocumentService

	// Search holds the default limit and threshold of the search tool.
	Search domain.RetrievalSettings
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
