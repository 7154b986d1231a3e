package story

import (
	"fmt"
	"strings"

	"github.com/Yates-Labs/sage/internal/rag"
)

// writePassages quotes the passages verbatim with their locators. Every
// generation prompt in the pipeline grounds against this same raw text
// rather than compounding earlier extraction output.
func writePassages(b *strings.Builder, passages []rag.SourcePassage) {
	for i, p := range passages {
		b.WriteString(fmt.Sprintf("## Passage %d — %s", i+1, p.Work))
		if p.Ref != "" {
			b.WriteString(fmt.Sprintf(" %s", p.Ref))
		}
		if p.Speaker != "" {
			b.WriteString(fmt.Sprintf(" (spoken by %s)", p.Speaker))
		}
		b.WriteString("\n\n")
		b.WriteString(p.Text)
		b.WriteString("\n\n")
	}
}

// assembleExtractionPrompt builds the structured-extraction prompt. The
// model must report `found` first so the caller can short-circuit, and must
// only extract a story that is actually present in the passages.
func assembleExtractionPrompt(problem string, passages []rag.SourcePassage) string {
	var b strings.Builder

	b.WriteString("You are a careful reader of sacred and mythological texts. ")
	b.WriteString("Your task is to determine whether the passages below contain a complete story ")
	b.WriteString("relevant to the seeker's problem, and if so, to extract it in structured form.\n\n")

	b.WriteString("# Seeker's Problem\n\n")
	b.WriteString(problem + "\n\n")

	b.WriteString("# Source Passages\n\n")
	writePassages(&b, passages)

	b.WriteString("# Task\n\n")
	b.WriteString("Extract a story ONLY if one is actually present in the passages. ")
	b.WriteString("A list of teachings, aphorisms, or expository verses is NOT a story. ")
	b.WriteString("Do not invent or complete a story from fragments.\n\n")
	b.WriteString("Respond with a single JSON object, no other text. The `found` field must come first:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"found\": true or false,\n")
	b.WriteString("  \"title\": \"short title of the story\",\n")
	b.WriteString("  \"situation\": \"the circumstances as stated in the passages\",\n")
	b.WriteString("  \"task\": \"what the character needed to do or resolve\",\n")
	b.WriteString("  \"action\": \"what the character did, per the passages\",\n")
	b.WriteString("  \"result\": \"the outcome as stated in the passages\",\n")
	b.WriteString("  \"source_citation\": \"work and chapter/verse, as precise as the passages allow\",\n")
	b.WriteString("  \"character\": \"the central character\"\n")
	b.WriteString("}\n\n")
	b.WriteString("If found is false, leave every other field empty. ")
	b.WriteString("Include book, chapter, and verse in source_citation whenever the passages name them. ")
	b.WriteString("Prefer leaving a field empty over guessing.\n")

	return b.String()
}

// assembleSynthesisPrompt builds the prose-rendering prompt under the
// closed-world constraint: only facts present in the passages, ending with
// an explicit parallel to the seeker's problem.
func assembleSynthesisPrompt(star StoryRecord, problem string, passages []rag.SourcePassage) string {
	var b strings.Builder

	b.WriteString("You are a storyteller who retells stories from sacred texts with strict fidelity. ")
	b.WriteString("Retell the story identified below as warm, readable prose.\n\n")

	b.WriteString("# Story Outline\n\n")
	if star.Title != "" {
		b.WriteString(fmt.Sprintf("**Title:** %s\n", star.Title))
	}
	if star.Character != "" {
		b.WriteString(fmt.Sprintf("**Character:** %s\n", star.Character))
	}
	if star.Situation != "" {
		b.WriteString(fmt.Sprintf("**Situation:** %s\n", star.Situation))
	}
	if star.Task != "" {
		b.WriteString(fmt.Sprintf("**Task:** %s\n", star.Task))
	}
	if star.Action != "" {
		b.WriteString(fmt.Sprintf("**Action:** %s\n", star.Action))
	}
	if star.Result != "" {
		b.WriteString(fmt.Sprintf("**Result:** %s\n", star.Result))
	}
	if star.SourceCitation != "" {
		b.WriteString(fmt.Sprintf("**Source:** %s\n", star.SourceCitation))
	}
	b.WriteString("\n")

	b.WriteString("# Source Passages (the only permitted facts)\n\n")
	writePassages(&b, passages)

	b.WriteString("# Seeker's Problem\n\n")
	b.WriteString(problem + "\n\n")

	b.WriteString("# Rules\n\n")
	b.WriteString("1. Write 2-3 paragraphs.\n")
	b.WriteString("2. Use ONLY facts explicitly present in the source passages above.\n")
	b.WriteString("3. Do not introduce named characters, deities, dialogue, quotations, ")
	b.WriteString("motivations, or symbolic interpretations that the passages do not state.\n")
	b.WriteString("4. Where the passages are ambiguous, stay vague rather than inventing detail.\n")
	b.WriteString("5. End with one explicit, plain-spoken parallel between the story and the ")
	b.WriteString("seeker's problem. No mysticism, no therapy language.\n")

	return b.String()
}

// assembleVerificationPrompt builds the fact-check prompt. Conceptual
// additions are as disqualifying as factual ones.
func assembleVerificationPrompt(narrative string, passages []rag.SourcePassage) string {
	var b strings.Builder

	b.WriteString("You are a strict fact-checker. Compare the narrative below, line by line, ")
	b.WriteString("against the source passages. Flag every statement not explicitly supported ")
	b.WriteString("by the passages. Zero tolerance.\n\n")

	b.WriteString("# Narrative Under Review\n\n")
	b.WriteString(narrative + "\n\n")

	b.WriteString("# Source Passages (the only ground truth)\n\n")
	writePassages(&b, passages)

	b.WriteString("# What Counts as a Violation\n\n")
	b.WriteString("- character: a character or deity named in the narrative but not in the passages\n")
	b.WriteString("- event: an event not in the passages, or events in an order the passages contradict\n")
	b.WriteString("- dialogue: quoted or reported speech the passages do not contain\n")
	b.WriteString("- conceptual: symbolic reinterpretation, modern therapeutic framing, or a ")
	b.WriteString("motivation the passages do not state verbatim\n\n")
	b.WriteString("Conceptual inventions are exactly as disqualifying as factual ones. ")
	b.WriteString("A closing parallel to a seeker's problem is permitted and is not a violation.\n\n")

	b.WriteString("Respond with a single JSON object, no other text:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"has_issues\": true or false,\n")
	b.WriteString("  \"issues\": [\n")
	b.WriteString("    {\"detail\": \"the offending text\", \"reason\": \"why it is unsupported\", \"kind\": \"character|event|dialogue|conceptual\"}\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n")

	return b.String()
}

// assembleCorrectionPrompt builds the single corrective-rewrite prompt. It
// enumerates every issue with its reason and instructs fix-or-omit, never
// re-fabricate.
func assembleCorrectionPrompt(narrative string, issues []Issue, star StoryRecord, problem string, passages []rag.SourcePassage) string {
	var b strings.Builder

	b.WriteString("A fact-check of the narrative below found fabricated content. ")
	b.WriteString("Rewrite the narrative so that every flagged issue is fixed or the offending ")
	b.WriteString("content is removed.\n\n")

	b.WriteString("# Original Narrative\n\n")
	b.WriteString(narrative + "\n\n")

	b.WriteString("# Detected Issues\n\n")
	for i, issue := range issues {
		b.WriteString(fmt.Sprintf("%d. [%s] %s — %s\n", i+1, issue.Kind, issue.Detail, issue.Reason))
	}
	b.WriteString("\n")

	b.WriteString("# Source Passages (the only permitted facts)\n\n")
	writePassages(&b, passages)

	b.WriteString("# Seeker's Problem\n\n")
	b.WriteString(problem + "\n\n")

	b.WriteString("# Rules\n\n")
	b.WriteString("1. Fix or omit every flagged issue. Never replace a fabrication with another.\n")
	b.WriteString("2. Where the passages are ambiguous (for example an unclear timeline), ")
	b.WriteString("prefer vagueness over invention.\n")
	b.WriteString("3. Keep the length at 2-3 paragraphs and keep the closing parallel to the ")
	b.WriteString("seeker's problem.\n")
	if star.SourceCitation != "" {
		b.WriteString(fmt.Sprintf("4. The story is from %s; do not change the attribution.\n", star.SourceCitation))
	}
	b.WriteString("\nRespond with the corrected narrative only, no commentary.\n")

	return b.String()
}
