package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Synthesizer produces answers grounded in retrieved passages.
type Synthesizer struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	maxTokens int
}

// NewSynthesizer creates a synthesizer over the language model.
// A nil llm makes grounded synthesis fail with domain.ErrLLMUnavailable.
func NewSynthesizer(llm driven.LLMService) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// SetPromptStore sets the store used to load the answer template.
// Without one the built-in template is used.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetMaxTokens caps the answer length (0 = provider default).
func (s *Synthesizer) SetMaxTokens(n int) {
	s.maxTokens = n
}

// Available reports whether a language model is configured.
func (s *Synthesizer) Available() bool {
	return s != nil && s.llm != nil
}

// Synthesize answers the question from the grounding passages only.
// With no passages the refusal sentence is returned without calling the model.
// Generation always runs at temperature 0.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, grounding []domain.GroundingChunk) (string, error) {
	if len(grounding) == 0 {
		return domain.NoRelevantInformation, nil
	}
	if !s.Available() {
		return "", domain.ErrLLMUnavailable
	}

	prompt := s.BuildPrompt(question, grounding)
	logger.Debug("Answer prompt: %d characters, %d passages", len(prompt), len(grounding))

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: 0,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		return "", fmt.Errorf("%w: %w", domain.ErrLanguageModelService, err)
	}

	return strings.TrimSpace(answer), nil
}

// BuildPrompt renders the answer template with the refusal sentence, the
// question and the numbered context.
func (s *Synthesizer) BuildPrompt(question string, grounding []domain.GroundingChunk) string {
	return fmt.Sprintf(s.template(), domain.NoRelevantInformation, strings.TrimSpace(question), formatContext(grounding))
}

// template loads the answer template, falling back to the built-in one when
// the store is missing, fails, or the template has the wrong placeholders.
func (s *Synthesizer) template() string {
	if s.prompts == nil {
		return driven.DefaultAnswerPrompt
	}
	tpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("Loading answer prompt failed, using default: %v", err)
		return driven.DefaultAnswerPrompt
	}
	if strings.Count(tpl, "%s") != 3 || strings.Count(tpl, "%") != 3 {
		logger.Warn("Answer prompt must contain exactly three %%s placeholders, using default")
		return driven.DefaultAnswerPrompt
	}
	return tpl
}

// formatContext numbers passages as "(1) title: content".
func formatContext(grounding []domain.GroundingChunk) string {
	var b strings.Builder
	for i, g := range grounding {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "(%d) %s: %s", i+1, g.Title, g.Content)
	}
	return b.String()
}
