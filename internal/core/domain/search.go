package domain

// NoRelevantInformation is the fixed refusal returned when no stored passage
// grounds an answer. The language model is instructed to emit the same text.
const NoRelevantInformation = "No relevant information found in your uploaded documents for this question."

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	// Chunk is the matched passage.
	Chunk DocumentChunk

	// Score is the cosine similarity to the question, in [-1, 1].
	Score float64
}

// GroundingChunk is the context handed to answer synthesis.
type GroundingChunk struct {
	// Title is the document the passage came from.
	Title string

	// Content is the passage text.
	Content string
}

// SourceRef identifies a passage that grounded an answer.
type SourceRef struct {
	// Title is the document name.
	Title string `json:"title"`

	// Snippet is the start of the passage, at most SnippetLength characters.
	Snippet string `json:"snippet"`

	// Score is the passage's similarity to the question.
	Score float64 `json:"score"`
}

// Answer is the result of asking a question.
type Answer struct {
	// Message is the synthesised answer, or NoRelevantInformation.
	Message string `json:"message"`

	// Sources are the grounding passages in rank order.
	// Empty when no passage cleared the threshold.
	Sources []SourceRef `json:"matchedDocuments"`
}

// Grounded reports whether the answer was backed by retrieved passages.
func (a *Answer) Grounded() bool {
	return a != nil && len(a.Sources) > 0
}
