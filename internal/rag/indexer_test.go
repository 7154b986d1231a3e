package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/Yates-Labs/sage/internal/corpus"
)

func testPassages(n int) []corpus.Passage {
	passages := make([]corpus.Passage, n)
	for i := range passages {
		passages[i] = corpus.Passage{
			ID:         string(rune('a'+i)) + "#0",
			Work:       "Work",
			Ref:        "1.1",
			Text:       "passage text",
			UnitCount:  1,
			ChunkIndex: 0,
		}
	}
	return passages
}

func TestIndexPassages_Empty(t *testing.T) {
	if err := IndexPassages(context.Background(), nil, &mockEmbedder{}, &mockVectorStore{}, DefaultIndexOptions()); err != nil {
		t.Errorf("indexing nothing should succeed, got %v", err)
	}
}

func TestIndexPassages_NilDependencies(t *testing.T) {
	passages := testPassages(1)

	if err := IndexPassages(context.Background(), passages, nil, &mockVectorStore{}, DefaultIndexOptions()); err == nil {
		t.Error("expected error for nil embedder")
	}
	if err := IndexPassages(context.Background(), passages, &mockEmbedder{}, nil, DefaultIndexOptions()); err == nil {
		t.Error("expected error for nil vector store")
	}
}

func TestIndexPassages_Batches(t *testing.T) {
	store := &mockVectorStore{}
	embedCalls := 0
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			embedCalls++
			records := make([]EmbeddingRecord, len(texts))
			for i, text := range texts {
				records[i] = EmbeddingRecord{Text: text, Embedding: []float32{1, 2, 3}, Index: i, Model: "mock"}
			}
			return records, nil
		},
	}

	passages := testPassages(5)
	opts := IndexOptions{BatchSize: 2, SkipExisting: false}

	if err := IndexPassages(context.Background(), passages, embedder, store, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embedCalls != 3 {
		t.Errorf("expected 3 embedding batches for 5 passages at batch size 2, got %d", embedCalls)
	}
	if len(store.records) != 5 {
		t.Errorf("expected 5 stored records, got %d", len(store.records))
	}
}

func TestIndexPassages_SkipExisting(t *testing.T) {
	passages := testPassages(3)

	store := &mockVectorStore{
		records: map[string]PassageRecord{
			passages[0].ID: {PassageID: passages[0].ID},
		},
	}

	var embedded []string
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			embedded = append(embedded, texts...)
			records := make([]EmbeddingRecord, len(texts))
			for i, text := range texts {
				records[i] = EmbeddingRecord{Text: text, Embedding: []float32{1}, Index: i}
			}
			return records, nil
		},
	}

	opts := IndexOptions{BatchSize: 10, SkipExisting: true}
	if err := IndexPassages(context.Background(), passages, embedder, store, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(embedded) != 2 {
		t.Errorf("expected 2 new passages embedded, got %d", len(embedded))
	}
}

func TestIndexPassages_ForceReindex(t *testing.T) {
	passages := testPassages(2)

	deleted := false
	store := &mockVectorStore{
		records: map[string]PassageRecord{
			passages[0].ID: {PassageID: passages[0].ID},
			passages[1].ID: {PassageID: passages[1].ID},
		},
		deleteFunc: func(ctx context.Context, passageIDs []string) error {
			deleted = true
			if len(passageIDs) != 2 {
				t.Errorf("expected 2 IDs deleted, got %d", len(passageIDs))
			}
			return nil
		},
	}

	opts := IndexOptions{BatchSize: 10, ForceReindex: true}
	if err := IndexPassages(context.Background(), passages, &mockEmbedder{}, store, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !deleted {
		t.Error("force reindex should delete existing records first")
	}
}

func TestIndexPassages_EmbedFailure(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			return nil, ErrEmbeddingFailed
		},
	}

	err := IndexPassages(context.Background(), testPassages(1), embedder, &mockVectorStore{}, IndexOptions{BatchSize: 10})
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Errorf("expected ErrEmbeddingFailed, got %v", err)
	}
}
