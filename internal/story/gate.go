package story

import (
	"strings"

	"github.com/Yates-Labs/sage/internal/rag"
)

// GateConfig controls the eligibility gate. The marker token list is a
// configuration point: the default is tuned for devotional and mythological
// corpora, and a materially different corpus needs its own list.
type GateConfig struct {
	// MinChars is the minimum combined passage length worth extracting from
	MinChars int

	// MarkerTokens are matched case-insensitively; at least one must appear
	MarkerTokens []string
}

// DefaultGateConfig returns the gate parameters for devotional and
// mythological source texts: past-tense copulas, reported-speech verbs,
// temporal connectives, and honorific or character nouns.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinChars: 200,
		MarkerTokens: []string{
			// past-tense copulas
			"was", "were", "had been",
			// reported speech
			"said", "spoke", "replied", "asked", "told", "answered",
			// temporal connectives
			"then", "when", "once", "after", "before", "thereupon",
			// honorific and character nouns
			"king", "sage", "lord", "prince", "warrior", "son of", "daughter of",
		},
	}
}

// Gate decides whether retrieved passages contain enough narrative material
// to attempt story extraction. It is a pure function of the passage text:
// no side effects, no model call.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	if config.MinChars <= 0 {
		config.MinChars = DefaultGateConfig().MinChars
	}
	if len(config.MarkerTokens) == 0 {
		config.MarkerTokens = DefaultGateConfig().MarkerTokens
	}
	return &Gate{config: config}
}

// Evaluate concatenates the passages and applies the two checks: minimum
// length, then presence of at least one narrative marker token.
func (g *Gate) Evaluate(passages []rag.SourcePassage) EligibilityVerdict {
	var b strings.Builder
	for _, p := range passages {
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	combined := b.String()

	if combinedLen(combined) < g.config.MinChars {
		return EligibilityVerdict{Eligible: false, Reason: ReasonTooShort}
	}

	lower := strings.ToLower(combined)
	for _, token := range g.config.MarkerTokens {
		if containsToken(lower, strings.ToLower(token)) {
			return EligibilityVerdict{Eligible: true, Reason: ReasonOK}
		}
	}

	return EligibilityVerdict{Eligible: false, Reason: ReasonNoNarrativeMarkers}
}

// combinedLen measures the concatenated text without the joining newlines'
// padding distorting the threshold for many tiny passages.
func combinedLen(s string) int {
	return len(strings.TrimSpace(s))
}

// containsToken matches a token at word boundaries, so "was" does not match
// inside "wash". Multi-word tokens match as substrings of the text.
func containsToken(text, token string) bool {
	if strings.Contains(token, " ") {
		return strings.Contains(text, token)
	}

	idx := 0
	for {
		i := strings.Index(text[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)

		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
