package story

import (
	"context"
	"log"
	"strings"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

// Synthesizer renders a STAR claim as prose under the closed-world
// constraint: only facts present in the source passages may appear. When the
// model call fails it falls back to concatenating the claim's own fields, so
// a found story always yields a non-empty narrative.
type Synthesizer struct {
	llm llm.LLM
}

// NewSynthesizer creates a synthesizer backed by the given model.
func NewSynthesizer(model llm.LLM) *Synthesizer {
	return &Synthesizer{llm: model}
}

// Synthesize renders the claim as prose grounded in the passages.
func (s *Synthesizer) Synthesize(ctx context.Context, star StoryRecord, problem string, passages []rag.SourcePassage) string {
	prompt := assembleSynthesisPrompt(star, problem, passages)

	narrative, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[Story Pipeline] Synthesis call failed, falling back to extracted fields: %v", err)
		return fallbackNarrative(star)
	}

	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		log.Printf("[Story Pipeline] Synthesis returned empty prose, falling back to extracted fields")
		return fallbackNarrative(star)
	}

	return narrative
}

// fallbackNarrative joins the claim's situation, action, and result so the
// caller still gets readable text when synthesis is unavailable.
func fallbackNarrative(star StoryRecord) string {
	parts := make([]string, 0, 3)
	for _, field := range []string{star.Situation, star.Action, star.Result} {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
