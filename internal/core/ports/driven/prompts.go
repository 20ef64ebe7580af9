package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer grounds an answer in retrieved passages.
	// The template expects three %s placeholders in order: the refusal
	// sentence, the question and the numbered context.
	PromptAnswer = "answer"
)

// DefaultAnswerPrompt is the built-in template for PromptAnswer.
const DefaultAnswerPrompt = `You answer questions using only the context passages below, which come from the user's uploaded documents.
If the context does not contain the answer, reply exactly with: %s
Do not use outside knowledge. Keep the answer concise and cite the titles of the documents you used.

Question: %s

Context:
%s

Answer:`
