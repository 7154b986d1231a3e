package story

import (
	"strings"
	"testing"

	"github.com/Yates-Labs/sage/internal/rag"
)

func passagesFromText(texts ...string) []rag.SourcePassage {
	passages := make([]rag.SourcePassage, len(texts))
	for i, text := range texts {
		passages[i] = rag.SourcePassage{
			PassageID: "test#0",
			Work:      "Test Work",
			Text:      text,
		}
	}
	return passages
}

func TestGate_Evaluate(t *testing.T) {
	narrative := strings.Repeat("The king rode out at dawn and his charioteer spoke. ", 6)
	expository := strings.Repeat("Action binds. Detachment frees. Equanimity is yoga. ", 6)

	tests := []struct {
		name     string
		passages []rag.SourcePassage
		eligible bool
		reason   EligibilityReason
	}{
		{
			name:     "narrative text passes",
			passages: passagesFromText(narrative),
			eligible: true,
			reason:   ReasonOK,
		},
		{
			name:     "short text rejected before marker check",
			passages: passagesFromText("The king said yes."),
			eligible: false,
			reason:   ReasonTooShort,
		},
		{
			name:     "no passages rejected",
			passages: nil,
			eligible: false,
			reason:   ReasonTooShort,
		},
		{
			name:     "expository text rejected for lack of markers",
			passages: passagesFromText(expository),
			eligible: false,
			reason:   ReasonNoNarrativeMarkers,
		},
		{
			name:     "length accumulates across passages",
			passages: passagesFromText(narrative[:100], narrative[:120]),
			eligible: true,
			reason:   ReasonOK,
		},
	}

	gate := NewGate(DefaultGateConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := gate.Evaluate(tt.passages)
			if verdict.Eligible != tt.eligible {
				t.Errorf("expected eligible=%v, got %v", tt.eligible, verdict.Eligible)
			}
			if verdict.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, verdict.Reason)
			}
		})
	}
}

func TestGate_Deterministic(t *testing.T) {
	gate := NewGate(DefaultGateConfig())
	passages := passagesFromText(strings.Repeat("Then the sage replied to the prince. ", 8))

	first := gate.Evaluate(passages)
	for i := 0; i < 3; i++ {
		if got := gate.Evaluate(passages); got != first {
			t.Fatalf("verdict changed between identical evaluations: %+v vs %+v", first, got)
		}
	}
}

func TestGate_WordBoundaries(t *testing.T) {
	// Marker tokens must match whole words only: "washing" contains "was"
	// but is not a past-tense copula.
	text := strings.Repeat("Washing. Kingdom. Whenever. Sages gather. ", 8)
	gate := NewGate(DefaultGateConfig())

	verdict := gate.Evaluate(passagesFromText(text))
	if verdict.Eligible {
		t.Error("substring matches inside longer words should not count as markers")
	}
	if verdict.Reason != ReasonNoNarrativeMarkers {
		t.Errorf("expected no_narrative_markers, got %q", verdict.Reason)
	}
}

func TestGate_MultiWordMarker(t *testing.T) {
	text := strings.Repeat("Arjuna, son of Pandu, took up his bow in silence. ", 6)
	gate := NewGate(DefaultGateConfig())

	if verdict := gate.Evaluate(passagesFromText(text)); !verdict.Eligible {
		t.Errorf("expected 'son of' to qualify as a marker, got %+v", verdict)
	}
}

func TestNewGate_Defaults(t *testing.T) {
	gate := NewGate(GateConfig{})
	if gate.config.MinChars != 200 {
		t.Errorf("expected default MinChars 200, got %d", gate.config.MinChars)
	}
	if len(gate.config.MarkerTokens) == 0 {
		t.Error("expected default marker tokens")
	}
}
