package rag

// PassageRecord is the stored row for one corpus passage.
type PassageRecord struct {
	PassageID  string    `json:"passage_id"`
	Work       string    `json:"work"`
	Ref        string    `json:"ref"`
	Speaker    string    `json:"speaker,omitempty"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	UnitCount  int       `json:"unit_count"`
	ChunkIndex int       `json:"chunk_index"`
}

// SourcePassage is a retrieved passage with its locator metadata and
// similarity score. The pipeline holds these only for the duration of one
// request.
type SourcePassage struct {
	PassageID string  `json:"passage_id"`
	Work      string  `json:"work"`
	Ref       string  `json:"ref"`
	Speaker   string  `json:"speaker,omitempty"`
	Text      string  `json:"text"`
	Score     float32 `json:"score"`
}

// SearchOptions provides filtering options for vector search
type SearchOptions struct {
	// PassageIDs restricts results to specific passages
	PassageIDs []string `json:"passage_ids,omitempty"`

	// Work restricts results to one source text
	Work string `json:"work,omitempty"`
}

// IndexOptions provides configuration for passage indexing
type IndexOptions struct {
	// BatchSize determines how many passages to embed at once
	BatchSize int

	// ForceReindex will delete and re-insert passages even if they exist
	ForceReindex bool

	// SkipExisting will check if a passage already exists and skip if present
	SkipExisting bool
}

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    10, // Batch size for embedding API calls
		ForceReindex: false,
		SkipExisting: true,
	}
}
