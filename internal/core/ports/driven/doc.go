// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: Persistence of embedded document chunks
//   - Normaliser: Decodes raw files into text
//   - Chunker: Splits decoded text into passages
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, ingestion and retrieval are disabled.
//   - LLMService: Language model completion. Without it, asking questions is disabled.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//   - FileSource: Directory of files for bulk import.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
