package story

import (
	"context"
	"log"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

// Pipeline runs the full grounded narrative flow over retrieved passages:
// eligibility gate, structured extraction, prose synthesis, fact audit, and
// at most one corrective rewrite. Run never returns an error; every model
// failure degrades to a defined outcome.
type Pipeline struct {
	gate        *Gate
	extractor   *Extractor
	synthesizer *Synthesizer
	verifier    *Verifier
	regenerator *Regenerator
}

// NewPipeline wires the five stages around a single model. All stages share
// the same model; callers needing different models per stage can assemble
// the stages directly.
func NewPipeline(model llm.LLM, gateConfig GateConfig) *Pipeline {
	return &Pipeline{
		gate:        NewGate(gateConfig),
		extractor:   NewExtractor(model),
		synthesizer: NewSynthesizer(model),
		verifier:    NewVerifier(model),
		regenerator: NewRegenerator(model),
	}
}

// Run executes the pipeline over the given passages. The returned Result
// always has a definite Outcome, and Story is non-nil exactly when a story
// was found.
func (p *Pipeline) Run(ctx context.Context, problem string, passages []rag.SourcePassage) Result {
	log.Printf("[Story Pipeline] Stage 1: Checking narrative eligibility of %d passages", len(passages))
	verdict := p.gate.Evaluate(passages)
	if !verdict.Eligible {
		log.Printf("[Story Pipeline] Passages ineligible (%s), no story", verdict.Reason)
		return Result{Outcome: OutcomeNoStory, Eligibility: verdict}
	}

	log.Printf("[Story Pipeline] Stage 2: Extracting structured story")
	star := p.extractor.Extract(ctx, problem, passages)
	if star == nil {
		log.Printf("[Story Pipeline] No story found in passages")
		return Result{Outcome: OutcomeNoStory, Eligibility: verdict}
	}

	log.Printf("[Story Pipeline] Stage 3: Synthesizing narrative for %q", star.Title)
	narrative := p.synthesizer.Synthesize(ctx, *star, problem, passages)

	log.Printf("[Story Pipeline] Stage 4: Fact-checking narrative against sources")
	check, audited := p.verifier.Verify(ctx, narrative, passages)
	if !audited {
		return Result{
			Outcome:     OutcomeUnverifiedFallback,
			Story:       &NarrativeResult{Star: *star, Narrative: narrative},
			Eligibility: verdict,
		}
	}

	if !check.HasIssues {
		log.Printf("[Story Pipeline] Narrative verified clean")
		return Result{
			Outcome:     OutcomeClean,
			Story:       &NarrativeResult{Star: *star, Narrative: narrative},
			Eligibility: verdict,
		}
	}

	log.Printf("[Story Pipeline] Stage 5: Correcting narrative (%d issues)", len(check.Issues))
	corrected, ok := p.regenerator.Correct(ctx, narrative, check.Issues, *star, problem, passages)

	// The corrected narrative is not re-verified: one audit, one rewrite.
	return Result{
		Outcome:     OutcomeCorrected,
		Story:       &NarrativeResult{Star: *star, Narrative: corrected, Corrected: ok},
		Eligibility: verdict,
	}
}
