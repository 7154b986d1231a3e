// Package guidance implements the retrieval-QA path: empathetic guidance
// grounded in retrieved passages, plus a retrieval-free wellness mode.
package guidance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

// ErrGuidanceFailed indicates the guidance call failed. Unlike the story
// stages, guidance has no fallback: the caller surfaces the failure.
var ErrGuidanceFailed = errors.New("guidance generation failed")

// DefaultPersona frames the model as a compassionate teacher speaking from
// the source texts, not as an assistant.
const DefaultPersona = "You are a wise, compassionate spiritual guide in the tradition of " +
	"Krishna counseling Arjuna. You speak directly to the seeker, warmly and " +
	"without judgment, drawing your counsel from the scriptures provided to you."

// Config holds the advisor parameters.
type Config struct {
	// Persona is the system framing prepended to every guidance prompt
	Persona string
}

// DefaultConfig returns the advisor defaults.
func DefaultConfig() Config {
	return Config{Persona: DefaultPersona}
}

// Advisor produces guidance grounded in retrieved passages.
type Advisor struct {
	llm    llm.LLM
	config Config
}

// NewAdvisor creates an advisor backed by the given model.
func NewAdvisor(model llm.LLM, config Config) *Advisor {
	if config.Persona == "" {
		config.Persona = DefaultPersona
	}
	return &Advisor{llm: model, config: config}
}

// Guide generates empathetic guidance for the seeker's problem, grounded in
// the passages. Failure here is fatal to the request.
func (a *Advisor) Guide(ctx context.Context, problem string, passages []rag.SourcePassage) (string, error) {
	log.Printf("[Guidance] Generating guidance over %d passages", len(passages))

	prompt := a.assembleGuidancePrompt(problem, passages)
	answer, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGuidanceFailed, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned empty guidance", ErrGuidanceFailed)
	}

	return answer, nil
}

// Support generates a short grounding message for a feeling, without
// retrieval. Used by the wellness mode.
func (a *Advisor) Support(ctx context.Context, feeling string) (string, error) {
	log.Printf("[Guidance] Generating wellness support")

	prompt := a.assembleSupportPrompt(feeling)
	message, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGuidanceFailed, err)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: model returned empty support message", ErrGuidanceFailed)
	}

	return message, nil
}

func (a *Advisor) assembleGuidancePrompt(problem string, passages []rag.SourcePassage) string {
	var b strings.Builder

	b.WriteString(a.config.Persona)
	b.WriteString("\n\n# Scriptures\n\n")
	for i, p := range passages {
		b.WriteString(fmt.Sprintf("## Passage %d — %s", i+1, p.Work))
		if p.Ref != "" {
			b.WriteString(" " + p.Ref)
		}
		if p.Speaker != "" {
			b.WriteString(fmt.Sprintf(" (spoken by %s)", p.Speaker))
		}
		b.WriteString("\n\n")
		b.WriteString(p.Text)
		b.WriteString("\n\n")
	}

	b.WriteString("# The Seeker Says\n\n")
	b.WriteString(problem + "\n\n")

	b.WriteString("# Your Counsel\n\n")
	b.WriteString("Speak directly to the seeker in 2-4 short paragraphs. ")
	b.WriteString("Acknowledge their feeling first, then offer perspective drawn from the ")
	b.WriteString("scriptures above, naming the work you are drawing from. ")
	b.WriteString("Be concrete and gentle. Do not lecture, do not moralize, and do not ")
	b.WriteString("present yourself as an AI or add disclaimers.\n")

	return b.String()
}

func (a *Advisor) assembleSupportPrompt(feeling string) string {
	var b strings.Builder

	b.WriteString(a.config.Persona)
	b.WriteString("\n\nThe seeker shares how they feel right now: ")
	b.WriteString(feeling)
	b.WriteString("\n\nOffer one short, grounding message (3-5 sentences). ")
	b.WriteString("Acknowledge the feeling, offer a steadying thought, and suggest one small ")
	b.WriteString("present-moment practice such as a breath or a pause. ")
	b.WriteString("No scripture citations needed, no disclaimers.\n")

	return b.String()
}
