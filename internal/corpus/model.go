// Package corpus loads source texts and chunks them into indexable passages.
// Texts are devotional and mythological works stored as verse or paragraph
// units; a corpus can come from a local directory, a git repository, or a
// GitHub release of a corpus repository.
package corpus

import "context"

// Unit is one source unit of a work: a verse, a stanza, or a paragraph.
type Unit struct {
	// Work is the name of the source text (e.g., "Bhagavad Gita")
	Work string `json:"work"`

	// Ref locates the unit within the work (e.g., "2.47" for chapter 2 verse 47)
	Ref string `json:"ref"`

	// Speaker is the voice of the unit when the work records one
	Speaker string `json:"speaker,omitempty"`

	// Text is the unit's content
	Text string `json:"text"`
}

// Document is one loaded corpus file.
type Document struct {
	// Name is the file name the document was loaded from
	Name string

	// Work is the source text all units of this document belong to
	Work string

	Units []Unit
}

// Passage is an indexable chunk built from consecutive units of one document.
type Passage struct {
	// ID uniquely identifies the passage within the corpus
	ID string

	Work    string
	Ref     string
	Speaker string
	Text    string

	// UnitCount is how many source units the passage spans
	UnitCount int

	// ChunkIndex is the passage's position among the document's chunks
	ChunkIndex int
}

// Source fetches corpus documents from some backing location.
type Source interface {
	// Fetch loads all corpus documents. The returned Version identifies the
	// corpus revision when the backing location has one (git hash, release
	// tag), or is empty for plain directories.
	Fetch(ctx context.Context) ([]Document, error)

	// Version returns the corpus revision resolved by the last Fetch.
	Version() string
}
