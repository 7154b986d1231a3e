package story

import (
	"context"
	"log"
	"strings"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

// Regenerator performs the single bounded corrective rewrite after the
// verifier flags issues. It runs at most once per pipeline run and its
// output is never re-verified. A failed call keeps the original narrative.
type Regenerator struct {
	llm llm.LLM
}

// NewRegenerator creates a regenerator backed by the given model.
func NewRegenerator(model llm.LLM) *Regenerator {
	return &Regenerator{llm: model}
}

// Correct rewrites the narrative to fix or omit every flagged issue. The
// second return value reports whether a corrected narrative was produced.
func (r *Regenerator) Correct(ctx context.Context, narrative string, issues []Issue, star StoryRecord, problem string, passages []rag.SourcePassage) (string, bool) {
	prompt := assembleCorrectionPrompt(narrative, issues, star, problem, passages)

	corrected, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[Story Pipeline] Correction call failed, keeping original narrative: %v", err)
		return narrative, false
	}

	corrected = strings.TrimSpace(corrected)
	if corrected == "" {
		log.Printf("[Story Pipeline] Correction returned empty prose, keeping original narrative")
		return narrative, false
	}

	return corrected, true
}
