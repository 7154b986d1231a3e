package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDocument_JSON(t *testing.T) {
	data := []byte(`[
		{"work": "Bhagavad Gita", "ref": "2.47", "speaker": "Krishna", "text": "You have a right to your actions alone."},
		{"work": "Bhagavad Gita", "ref": "2.48", "speaker": "Krishna", "text": "Established in yoga, perform actions."}
	]`)

	doc, err := ParseDocument("bhagavad_gita.json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Work != "Bhagavad Gita" {
		t.Errorf("expected work Bhagavad Gita, got %s", doc.Work)
	}
	if len(doc.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(doc.Units))
	}
	if doc.Units[0].Ref != "2.47" {
		t.Errorf("unexpected ref: %s", doc.Units[0].Ref)
	}
	if doc.Units[1].Speaker != "Krishna" {
		t.Errorf("unexpected speaker: %s", doc.Units[1].Speaker)
	}
}

func TestParseDocument_JSONWorkDefaulting(t *testing.T) {
	data := []byte(`[{"ref": "1.1", "text": "In the beginning."}]`)

	doc, err := ParseDocument("upanishads.json", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Units[0].Work != "Upanishads" {
		t.Errorf("expected work derived from filename, got %q", doc.Units[0].Work)
	}
}

func TestParseDocument_Text(t *testing.T) {
	data := []byte("First paragraph of the work.\n\nSecond paragraph,\nspanning two lines.\n\n\nThird paragraph.")

	doc, err := ParseDocument("dhammapada.txt", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Work != "Dhammapada" {
		t.Errorf("expected work Dhammapada, got %s", doc.Work)
	}
	if len(doc.Units) != 3 {
		t.Fatalf("expected 3 paragraph units, got %d", len(doc.Units))
	}
	if doc.Units[1].Text != "Second paragraph,\nspanning two lines." {
		t.Errorf("unexpected second unit: %q", doc.Units[1].Text)
	}
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"malformed json", "a.json", `{"not": "an array"}`},
		{"empty text", "b.txt", "   \n\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(tt.file, []byte(tt.data))
			if !errors.Is(err, ErrInvalidCorpus) {
				t.Errorf("expected ErrInvalidCorpus, got %v", err)
			}
		})
	}
}

func TestDirSource_Fetch(t *testing.T) {
	dir := t.TempDir()

	gita := `[{"work": "Bhagavad Gita", "ref": "2.47", "text": "You have a right to your actions alone."}]`
	if err := os.WriteFile(filepath.Join(dir, "gita.json"), []byte(gita), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("A paragraph of wisdom."), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-corpus files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.pdf"), []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := NewDirSource(dir)
	docs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if source.Version() != "" {
		t.Errorf("dir source should have no version, got %q", source.Version())
	}
}

func TestDirSource_Empty(t *testing.T) {
	source := NewDirSource(t.TempDir())
	_, err := source.Fetch(context.Background())
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
