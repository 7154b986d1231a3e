package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNoDocuments   = errors.New("no corpus documents found")
	ErrInvalidCorpus = errors.New("invalid corpus file")
)

// DirSource loads corpus files from a local directory.
// JSON files hold an array of units; .txt and .md files are split into one
// unit per paragraph.
type DirSource struct {
	dir string
}

// NewDirSource creates a source over the given directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Fetch reads every corpus file in the directory, in name order.
func (s *DirSource) Fetch(ctx context.Context) ([]Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", s.dir, err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !isCorpusFile(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		doc, err := ParseDocument(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, s.dir)
	}
	return docs, nil
}

// Version returns "" — a plain directory carries no revision.
func (s *DirSource) Version() string {
	return ""
}

// isCorpusFile reports whether a file name looks like corpus material.
func isCorpusFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".txt", ".md":
		return true
	}
	return false
}

// ParseDocument parses one corpus file into a Document. JSON files must hold
// an array of units; text files become one unit per paragraph with the work
// name derived from the file name.
func ParseDocument(name string, data []byte) (Document, error) {
	work := workFromFilename(name)

	if strings.EqualFold(filepath.Ext(name), ".json") {
		var units []Unit
		if err := json.Unmarshal(data, &units); err != nil {
			return Document{}, fmt.Errorf("%w: %s: %v", ErrInvalidCorpus, name, err)
		}
		for i := range units {
			if units[i].Work == "" {
				units[i].Work = work
			}
		}
		if len(units) > 0 && units[0].Work != "" {
			work = units[0].Work
		}
		return Document{Name: name, Work: work, Units: units}, nil
	}

	// Plain text: one unit per paragraph.
	paragraphs := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n")
	var units []Unit
	for i, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		units = append(units, Unit{
			Work: work,
			Ref:  fmt.Sprintf("¶%d", i+1),
			Text: p,
		})
	}
	if len(units) == 0 {
		return Document{}, fmt.Errorf("%w: %s: empty document", ErrInvalidCorpus, name)
	}
	return Document{Name: name, Work: work, Units: units}, nil
}

// workFromFilename turns "bhagavad_gita.json" into "Bhagavad Gita".
func workFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
