package story

import (
	"context"
	"log"
	"strings"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

// Extractor turns eligible passages into a structured STAR claim with a
// single model call. Any failure — transport, malformed output, or an
// explicit found=false — degrades to "no story found"; extraction never
// propagates an error.
type Extractor struct {
	llm llm.LLM
}

// NewExtractor creates an extractor backed by the given model.
func NewExtractor(model llm.LLM) *Extractor {
	return &Extractor{llm: model}
}

// Extract attempts to pull a story from the passages. Returns nil when no
// story is present or the call fails.
func (e *Extractor) Extract(ctx context.Context, problem string, passages []rag.SourcePassage) *StoryRecord {
	prompt := assembleExtractionPrompt(problem, passages)

	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[Story Pipeline] Extraction call failed, treating as no story: %v", err)
		return nil
	}

	var record StoryRecord
	if err := llm.DecodeJSON(raw, &record); err != nil {
		log.Printf("[Story Pipeline] Extraction output unparseable, treating as no story: %v", err)
		return nil
	}

	if !record.Found {
		return nil
	}

	// A found claim with no substance at all is as good as no claim.
	if strings.TrimSpace(record.Situation) == "" &&
		strings.TrimSpace(record.Action) == "" &&
		strings.TrimSpace(record.Result) == "" {
		log.Printf("[Story Pipeline] Extraction returned found=true with an empty record, treating as no story")
		return nil
	}

	return &record
}
