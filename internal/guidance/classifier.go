package guidance

import (
	"context"
	"log"
	"strings"

	"github.com/Yates-Labs/sage/internal/llm"
)

// Classification labels a question for feedback analytics. It never drives
// retrieval or generation.
type Classification struct {
	Category string `json:"category"`
	Type     string `json:"type"`
}

// Categories a question can fall into.
var Categories = []string{
	"grief_loss",
	"anger_conflict",
	"anxiety_fear",
	"confusion_doubt",
	"desire_attachment",
	"duty_dharma",
	"relationships",
	"career_purpose",
	"other",
}

// QuestionTypes a question can take.
var QuestionTypes = []string{
	"how_to_deal",
	"why_happened",
	"what_should_do",
	"is_it_okay",
	"how_to_overcome",
	"understanding",
	"other",
}

// Classifier labels questions with one model call. Best-effort only: any
// failure yields the {other, other} label instead of an error.
type Classifier struct {
	llm llm.LLM
}

// NewClassifier creates a classifier backed by the given model.
func NewClassifier(model llm.LLM) *Classifier {
	return &Classifier{llm: model}
}

// Classify labels the question. It never returns an error to the point of
// failing a caller: unusable output degrades to {other, other}.
func (c *Classifier) Classify(ctx context.Context, question string) Classification {
	fallback := Classification{Category: "other", Type: "other"}

	raw, err := c.llm.Generate(ctx, c.assemblePrompt(question))
	if err != nil {
		log.Printf("[Guidance] Classification failed, using fallback label: %v", err)
		return fallback
	}

	var label Classification
	if err := llm.DecodeJSON(raw, &label); err != nil {
		log.Printf("[Guidance] Classification output unparseable, using fallback label: %v", err)
		return fallback
	}

	if !contains(Categories, label.Category) {
		label.Category = "other"
	}
	if !contains(QuestionTypes, label.Type) {
		label.Type = "other"
	}

	return label
}

func (c *Classifier) assemblePrompt(question string) string {
	var b strings.Builder

	b.WriteString("Classify the seeker's question below.\n\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nPick exactly one category from: ")
	b.WriteString(strings.Join(Categories, ", "))
	b.WriteString("\nPick exactly one type from: ")
	b.WriteString(strings.Join(QuestionTypes, ", "))
	b.WriteString("\n\nRespond with a single JSON object, no other text:\n")
	b.WriteString(`{"category": "...", "type": "..."}`)
	b.WriteString("\n")

	return b.String()
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
