package story

import (
	"context"
	"log"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

// Verifier audits a synthesized narrative against the source passages and
// reports every unsupported statement. A failed or unparseable audit yields
// a clean verdict: the narrative passes through unverified rather than being
// discarded, and the caller records that degradation.
type Verifier struct {
	llm llm.LLM
}

// NewVerifier creates a verifier backed by the given model.
func NewVerifier(model llm.LLM) *Verifier {
	return &Verifier{llm: model}
}

// Verify fact-checks the narrative against the passages. The second return
// value reports whether the audit actually ran.
func (v *Verifier) Verify(ctx context.Context, narrative string, passages []rag.SourcePassage) (FactCheckVerdict, bool) {
	prompt := assembleVerificationPrompt(narrative, passages)

	raw, err := v.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[Story Pipeline] Verification call failed, passing narrative through unaudited: %v", err)
		return FactCheckVerdict{HasIssues: false}, false
	}

	var verdict FactCheckVerdict
	if err := llm.DecodeJSON(raw, &verdict); err != nil {
		log.Printf("[Story Pipeline] Verification output unparseable, passing narrative through unaudited: %v", err)
		return FactCheckVerdict{HasIssues: false}, false
	}

	// An inconsistent verdict (flagged but no issues listed, or vice versa)
	// is normalized on the issue list, which is what correction consumes.
	verdict.HasIssues = len(verdict.Issues) > 0

	return verdict, true
}
