package corpus

import (
	"strings"
	"testing"
)

func makeUnits(work string, count, size int) []Unit {
	units := make([]Unit, count)
	for i := range units {
		units[i] = Unit{
			Work: work,
			Ref:  refFor(i),
			Text: strings.Repeat(string(rune('a'+i%26)), size),
		}
	}
	return units
}

func refFor(i int) string {
	return "1." + string(rune('1'+i))
}

func TestChunker_SingleSmallDocument(t *testing.T) {
	chunker := NewChunker(DefaultChunkConfig())

	doc := Document{
		Name: "gita.json",
		Work: "Bhagavad Gita",
		Units: []Unit{
			{Work: "Bhagavad Gita", Ref: "2.47", Speaker: "Krishna", Text: "You have a right to perform your duty."},
			{Work: "Bhagavad Gita", Ref: "2.48", Speaker: "Krishna", Text: "Perform your duty equipoised."},
		},
	}

	passages := chunker.Chunk([]Document{doc})

	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}

	p := passages[0]
	if p.Work != "Bhagavad Gita" {
		t.Errorf("unexpected work: %s", p.Work)
	}
	if p.Ref != "2.47–2.48" {
		t.Errorf("expected ref range 2.47–2.48, got %s", p.Ref)
	}
	if p.Speaker != "Krishna" {
		t.Errorf("expected unanimous speaker to be kept, got %q", p.Speaker)
	}
	if p.UnitCount != 2 {
		t.Errorf("expected 2 units, got %d", p.UnitCount)
	}
	if !strings.Contains(p.Text, "equipoised") {
		t.Errorf("passage text missing unit content: %s", p.Text)
	}
}

func TestChunker_RespectsMaxChars(t *testing.T) {
	config := ChunkConfig{MaxChars: 200, OverlapChars: 0, MinChars: 10}
	chunker := NewChunker(config)

	doc := Document{Name: "w.txt", Work: "Work", Units: makeUnits("Work", 6, 90)}
	passages := chunker.Chunk([]Document{doc})

	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}

	for i, p := range passages {
		// A passage may exceed MaxChars only when a single unit does; all
		// units here are 90 chars, so every passage must stay within bounds.
		if len(p.Text) > config.MaxChars+len("\n")*3 {
			t.Errorf("passage %d exceeds max chars: %d", i, len(p.Text))
		}
		if p.ChunkIndex != i {
			t.Errorf("passage %d has chunk index %d", i, p.ChunkIndex)
		}
	}
}

func TestChunker_OversizedUnitBecomesOwnPassage(t *testing.T) {
	config := ChunkConfig{MaxChars: 100, OverlapChars: 0, MinChars: 10}
	chunker := NewChunker(config)

	doc := Document{
		Name: "w.txt",
		Work: "Work",
		Units: []Unit{
			{Work: "Work", Ref: "1", Text: strings.Repeat("x", 300)},
		},
	}

	passages := chunker.Chunk([]Document{doc})
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage for oversized unit, got %d", len(passages))
	}
	if len(passages[0].Text) != 300 {
		t.Errorf("oversized unit should not be truncated, got %d chars", len(passages[0].Text))
	}
}

func TestChunker_CarriesOverlap(t *testing.T) {
	config := ChunkConfig{MaxChars: 200, OverlapChars: 100, MinChars: 10}
	chunker := NewChunker(config)

	doc := Document{Name: "w.txt", Work: "Work", Units: makeUnits("Work", 6, 90)}
	passages := chunker.Chunk([]Document{doc})

	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}

	for i := 1; i < len(passages); i++ {
		prev := passages[i-1]
		curr := passages[i]

		// The first line of each subsequent passage should repeat the tail
		// of the previous one.
		firstLine := strings.SplitN(curr.Text, "\n", 2)[0]
		if !strings.Contains(prev.Text, firstLine) {
			t.Errorf("passage %d does not overlap with its predecessor", i)
		}
	}
}

func TestChunker_MixedSpeakersDropped(t *testing.T) {
	chunker := NewChunker(DefaultChunkConfig())

	doc := Document{
		Name: "gita.json",
		Work: "Bhagavad Gita",
		Units: []Unit{
			{Work: "Bhagavad Gita", Ref: "1.1", Speaker: "Dhritarashtra", Text: "On the field of dharma, what did my sons do?"},
			{Work: "Bhagavad Gita", Ref: "1.2", Speaker: "Sanjaya", Text: "Seeing the army arrayed, the king approached his teacher."},
		},
	}

	passages := chunker.Chunk([]Document{doc})
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Speaker != "" {
		t.Errorf("mixed speakers should yield empty speaker, got %q", passages[0].Speaker)
	}
}

func TestChunker_EmptyUnitsSkipped(t *testing.T) {
	chunker := NewChunker(DefaultChunkConfig())

	doc := Document{
		Name: "w.txt",
		Work: "Work",
		Units: []Unit{
			{Work: "Work", Ref: "1", Text: "   "},
			{Work: "Work", Ref: "2", Text: "Real content here."},
		},
	}

	passages := chunker.Chunk([]Document{doc})
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].UnitCount != 1 {
		t.Errorf("blank unit should be skipped, got %d units", passages[0].UnitCount)
	}
}

func TestChunker_PassageIDsAreUnique(t *testing.T) {
	chunker := NewChunker(ChunkConfig{MaxChars: 150, OverlapChars: 0, MinChars: 10})

	docs := []Document{
		{Name: "a.txt", Work: "A", Units: makeUnits("A", 4, 90)},
		{Name: "b.txt", Work: "B", Units: makeUnits("B", 4, 90)},
	}

	passages := chunker.Chunk(docs)
	seen := make(map[string]bool)
	for _, p := range passages {
		if seen[p.ID] {
			t.Errorf("duplicate passage ID %s", p.ID)
		}
		seen[p.ID] = true
	}
}
