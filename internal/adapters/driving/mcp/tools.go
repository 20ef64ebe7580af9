package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// defaultSearchLimit is used when neither the input nor the settings give a limit.
const defaultSearchLimit = 10

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the stored documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Message string             `json:"message"`
	Sources []domain.SourceRef `json:"sources"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"the text to find similar passages for"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity in [-1, 1] (default 0.3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []domain.TitleSummary `json:"documents"`
	Count     int                   `json:"count"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	Title string `json:"title" jsonschema:"the exact title of the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Title   string `json:"title"`
	Deleted int    `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the uploaded documents, citing the passages used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the stored passages most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List stored document titles with their chunk counts",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete every chunk stored under a document title",
	}, s.handleDeleteDocument)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Ask == nil {
		return nil, AskOutput{}, toolError(domain.ErrLLMUnavailable)
	}

	answer, err := s.ports.Ask.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.SourceRef{}
	}
	return nil, AskOutput{Message: answer.Message, Sources: sources}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	threshold := s.ports.Search.SearchThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	hits, err := s.ports.Retrieval.Retrieve(ctx, input.Query, limit, threshold)
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = SearchResultOutput{
			Title:      hit.Chunk.Title,
			ChunkIndex: hit.Chunk.ChunkIndex,
			Score:      hit.Score,
			Content:    hit.Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError(err)
	}
	if docs == nil {
		docs = []domain.TitleSummary{}
	}
	return nil, ListDocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

// handleDeleteDocument handles the delete_document tool invocation.
func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	deleted, err := s.ports.Document.Delete(ctx, input.Title)
	if err != nil {
		return nil, DeleteDocumentOutput{}, toolError(err)
	}
	return nil, DeleteDocumentOutput{Title: input.Title, Deleted: deleted}, nil
}

// toolError prefixes the error with its class so clients can tell bad
// input from a failing provider.
func toolError(err error) error {
	return fmt.Errorf("%s error: %w", domain.ClassifyError(err), err)
}
