package rag

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// Integration tests against a running Milvus instance. Skipped in short mode;
// point MILVUS_ADDRESS at a test server to run them.

func newTestStore(t *testing.T) *MilvusStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Milvus integration test in short mode")
	}

	config := DefaultMilvusConfig()
	config.CollectionName = fmt.Sprintf("sage_test_%d", time.Now().UnixNano())
	config.Dimension = 8

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewMilvusStore(ctx, config)
	if err != nil {
		t.Skipf("Milvus not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testVector(seed float32) []float32 {
	v := make([]float32, 8)
	for i := range v {
		v[i] = seed + float32(i)*0.1
	}
	return v
}

func TestMilvusStore_InsertSearchDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []PassageRecord{
		{
			PassageID:  "gita.json#0",
			Work:       "Bhagavad Gita",
			Ref:        "2.47",
			Speaker:    "Krishna",
			Text:       "You have a right to your actions alone.",
			Embedding:  testVector(1),
			UnitCount:  1,
			ChunkIndex: 0,
		},
		{
			PassageID:  "gita.json#1",
			Work:       "Bhagavad Gita",
			Ref:        "2.48",
			Speaker:    "Krishna",
			Text:       "Established in yoga, perform actions.",
			Embedding:  testVector(5),
			UnitCount:  1,
			ChunkIndex: 1,
		},
	}

	if err := store.Insert(ctx, records); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	passages, err := store.Search(ctx, testVector(1), 2, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(passages) == 0 {
		t.Fatal("expected search results")
	}
	if passages[0].PassageID != "gita.json#0" {
		t.Errorf("expected closest passage gita.json#0, got %s", passages[0].PassageID)
	}
	if passages[0].Work != "Bhagavad Gita" {
		t.Errorf("metadata not round-tripped: %+v", passages[0])
	}

	existence, err := store.Query(ctx, []string{"gita.json#0", "missing#9"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !existence["gita.json#0"] || existence["missing#9"] {
		t.Errorf("unexpected existence map: %v", existence)
	}

	if err := store.Delete(ctx, []string{"gita.json#0", "gita.json#1"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestMilvusStore_InvalidDimension(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Search(ctx, []float32{1, 2}, 1, nil)
	if err == nil {
		t.Error("expected dimension mismatch error")
	}

	err = store.Insert(ctx, []PassageRecord{{PassageID: "x", Embedding: []float32{1}}})
	if err == nil {
		t.Error("expected dimension mismatch error on insert")
	}
}

func TestNewMilvusStore_InvalidConfig(t *testing.T) {
	_, err := NewMilvusStore(context.Background(), MilvusConfig{Dimension: 0})
	if err != ErrInvalidDimension {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}
