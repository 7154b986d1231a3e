package corpus

import (
	"fmt"
	"strings"
)

// ChunkConfig controls how consecutive units are grouped into passages.
type ChunkConfig struct {
	// MaxChars is the target upper bound on passage text length. A single
	// unit longer than MaxChars still becomes its own passage.
	MaxChars int

	// OverlapChars controls how much trailing text is carried into the next
	// passage, expressed as a character budget of whole units.
	OverlapChars int

	// MinChars drops trailing fragments shorter than this unless they are
	// the document's only chunk.
	MinChars int
}

// DefaultChunkConfig returns the chunking parameters tuned for verse-sized
// units: 800-character passages with a 150-character overlap.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:     800,
		OverlapChars: 150,
		MinChars:     50,
	}
}

// Chunker groups consecutive units of a document into passages.
type Chunker struct {
	config ChunkConfig
}

// NewChunker creates a chunker with the given configuration.
func NewChunker(config ChunkConfig) *Chunker {
	if config.MaxChars <= 0 {
		config.MaxChars = DefaultChunkConfig().MaxChars
	}
	if config.OverlapChars < 0 {
		config.OverlapChars = 0
	}
	return &Chunker{config: config}
}

// Chunk splits every document into passages, preserving document order.
func (c *Chunker) Chunk(docs []Document) []Passage {
	var passages []Passage
	for _, doc := range docs {
		passages = append(passages, c.chunkDocument(doc)...)
	}
	return passages
}

// chunkDocument walks the document's units, accumulating them into passages
// of at most MaxChars, carrying trailing units over as overlap.
func (c *Chunker) chunkDocument(doc Document) []Passage {
	var passages []Passage
	var current []Unit
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		passages = append(passages, c.buildPassage(doc, current, len(passages)))

		// Carry trailing units into the next chunk as overlap.
		overlap := trailingUnits(current, c.config.OverlapChars)
		current = overlap
		currentLen = unitsLen(overlap)
	}

	for _, unit := range doc.Units {
		text := strings.TrimSpace(unit.Text)
		if text == "" {
			continue
		}

		if currentLen > 0 && currentLen+len(text) > c.config.MaxChars {
			flush()
		}
		current = append(current, unit)
		currentLen += len(text)
	}

	// Final chunk: drop fragments below MinChars unless they are all we have.
	if len(current) > 0 && (unitsLen(current) >= c.config.MinChars || len(passages) == 0) {
		passages = append(passages, c.buildPassage(doc, current, len(passages)))
	}

	return passages
}

// buildPassage assembles one passage from consecutive units. Refs collapse
// into a range, and the speaker is kept only when all units agree.
func (c *Chunker) buildPassage(doc Document, units []Unit, index int) Passage {
	var texts []string
	for _, u := range units {
		texts = append(texts, strings.TrimSpace(u.Text))
	}

	ref := units[0].Ref
	if last := units[len(units)-1].Ref; last != "" && last != ref {
		ref = fmt.Sprintf("%s–%s", ref, last)
	}

	speaker := units[0].Speaker
	for _, u := range units[1:] {
		if u.Speaker != speaker {
			speaker = ""
			break
		}
	}

	return Passage{
		ID:         fmt.Sprintf("%s#%d", doc.Name, index),
		Work:       doc.Work,
		Ref:        ref,
		Speaker:    speaker,
		Text:       strings.Join(texts, "\n"),
		UnitCount:  len(units),
		ChunkIndex: index,
	}
}

// trailingUnits returns the suffix of units whose combined text fits within
// the overlap budget. Whole units only; a unit larger than the budget is
// never carried.
func trailingUnits(units []Unit, budget int) []Unit {
	if budget <= 0 {
		return nil
	}
	total := 0
	start := len(units)
	for i := len(units) - 1; i >= 0; i-- {
		l := len(strings.TrimSpace(units[i].Text))
		if total+l > budget {
			break
		}
		total += l
		start = i
	}
	if start == len(units) {
		return nil
	}
	out := make([]Unit, len(units)-start)
	copy(out, units[start:])
	return out
}

func unitsLen(units []Unit) int {
	total := 0
	for _, u := range units {
		total += len(strings.TrimSpace(u.Text))
	}
	return total
}
