package guidance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
)

var testPassages = []rag.SourcePassage{
	{PassageID: "gita.json#0", Work: "Bhagavad Gita", Ref: "2.47", Speaker: "Krishna", Text: "You have a right to your actions alone."},
	{PassageID: "gita.json#1", Work: "Bhagavad Gita", Ref: "2.48", Text: "Established in yoga, perform actions."},
}

func TestAdvisor_Guide(t *testing.T) {
	mock := llm.NewMock("Dear seeker, the Gita teaches detachment from outcomes.")
	advisor := NewAdvisor(mock, DefaultConfig())

	answer, err := advisor.Guide(context.Background(), "I fear losing my job", testPassages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(answer, "detachment") {
		t.Errorf("unexpected guidance: %q", answer)
	}

	prompt := mock.LastPrompt()
	for _, want := range []string{
		"I fear losing my job",
		"You have a right to your actions alone",
		"Bhagavad Gita 2.47",
		"(spoken by Krishna)",
		DefaultPersona,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("guidance prompt missing %q", want)
		}
	}
}

func TestAdvisor_GuideFailureIsFatal(t *testing.T) {
	advisor := NewAdvisor(llm.NewMockWithError(errors.New("model unavailable")), DefaultConfig())

	_, err := advisor.Guide(context.Background(), "problem", testPassages)
	if !errors.Is(err, ErrGuidanceFailed) {
		t.Errorf("expected ErrGuidanceFailed, got %v", err)
	}
}

func TestAdvisor_GuideEmptyAnswerIsFatal(t *testing.T) {
	advisor := NewAdvisor(llm.NewMock("   \n"), DefaultConfig())

	_, err := advisor.Guide(context.Background(), "problem", testPassages)
	if !errors.Is(err, ErrGuidanceFailed) {
		t.Errorf("expected ErrGuidanceFailed for empty answer, got %v", err)
	}
}

func TestAdvisor_Support(t *testing.T) {
	mock := llm.NewMock("Take one slow breath. This feeling will pass.")
	advisor := NewAdvisor(mock, Config{Persona: "You are a calm companion."})

	message, err := advisor.Support(context.Background(), "I feel overwhelmed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message == "" {
		t.Error("expected a support message")
	}

	prompt := mock.LastPrompt()
	if !strings.Contains(prompt, "I feel overwhelmed") {
		t.Error("support prompt missing the feeling")
	}
	if !strings.Contains(prompt, "You are a calm companion.") {
		t.Error("support prompt missing the configured persona")
	}
}

func TestNewAdvisor_EmptyPersonaGetsDefault(t *testing.T) {
	advisor := NewAdvisor(llm.NewMock("ok"), Config{})
	if advisor.config.Persona != DefaultPersona {
		t.Error("empty persona should fall back to the default")
	}
}
