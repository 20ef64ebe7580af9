// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentChunk: A bounded passage of an uploaded document with its embedding
//   - TitleSummary: Per-title chunk counts used for document listing
//   - ScoredChunk: A chunk paired with its similarity to a question
//   - Answer: A grounded answer together with the passages that support it
//   - SourceFile: A named text file offered for ingestion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
