// Package story implements the grounded narrative synthesis pipeline: it
// turns retrieved passages into a structured story claim, renders the claim
// as prose, audits the prose for fabricated content against the source
// passages, and issues one bounded corrective rewrite when violations are
// found.
package story

// StoryRecord is a STAR (situation/task/action/result) claim extracted from
// source passages. If Found is false, no other field is meaningful and the
// pipeline must not proceed further. Sparse records (Found true, some fields
// empty) flow forward unchanged.
type StoryRecord struct {
	Found          bool   `json:"found"`
	Title          string `json:"title,omitempty"`
	Situation      string `json:"situation,omitempty"`
	Task           string `json:"task,omitempty"`
	Action         string `json:"action,omitempty"`
	Result         string `json:"result,omitempty"`
	SourceCitation string `json:"source_citation,omitempty"`
	Character      string `json:"character,omitempty"`
}

// IssueKind classifies a detected fabrication.
type IssueKind string

const (
	// IssueCharacter is an invented character or deity not named in the passages
	IssueCharacter IssueKind = "character"

	// IssueEvent is a fabricated event or timeline violation
	IssueEvent IssueKind = "event"

	// IssueDialogue is added dialogue or quotation absent from the passages
	IssueDialogue IssueKind = "dialogue"

	// IssueConceptual is a symbolic reinterpretation, modern therapeutic
	// framing, or motivation not stated verbatim
	IssueConceptual IssueKind = "conceptual"
)

// Issue is one detected fabrication in a synthesized narrative.
type Issue struct {
	Detail string    `json:"detail"`
	Reason string    `json:"reason"`
	Kind   IssueKind `json:"kind"`
}

// FactCheckVerdict is the verifier's judgement of a narrative.
type FactCheckVerdict struct {
	HasIssues bool    `json:"has_issues"`
	Issues    []Issue `json:"issues,omitempty"`
}

// NarrativeResult is the unit returned to callers. Immutable once
// constructed; carries no back-reference to passages.
type NarrativeResult struct {
	Star      StoryRecord `json:"star"`
	Narrative string      `json:"narrative"`

	// Corrected is true iff the corrective regenerator ran and produced a
	// corrected narrative.
	Corrected bool `json:"corrected"`
}

// EligibilityReason explains an eligibility verdict.
type EligibilityReason string

const (
	ReasonTooShort           EligibilityReason = "too_short"
	ReasonNoNarrativeMarkers EligibilityReason = "no_narrative_markers"
	ReasonOK                 EligibilityReason = "ok"
)

// EligibilityVerdict is the gate's decision on whether the retrieved
// passages contain enough narrative material to attempt extraction.
type EligibilityVerdict struct {
	Eligible bool              `json:"eligible"`
	Reason   EligibilityReason `json:"reason"`
}

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	// OutcomeNoStory means eligibility failed or the extractor found nothing
	OutcomeNoStory Outcome = "no_story"

	// OutcomeUnverifiedFallback means the verifier call failed and the
	// narrative passed through unaudited
	OutcomeUnverifiedFallback Outcome = "story_unverified_fallback"

	// OutcomeClean means verification found no issues
	OutcomeClean Outcome = "story_clean"

	// OutcomeCorrected means issues were found and a corrective pass was
	// completed or attempted
	OutcomeCorrected Outcome = "story_corrected"
)

// Result is the outcome of one pipeline run. Story is nil iff Outcome is
// OutcomeNoStory.
type Result struct {
	Outcome     Outcome            `json:"outcome"`
	Story       *NarrativeResult   `json:"story,omitempty"`
	Eligibility EligibilityVerdict `json:"eligibility"`
}
