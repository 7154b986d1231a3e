package feedback

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveFillsDefaults(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.Save(Record{Question: "Why do I suffer?", Rating: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected a generated ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("expected a generated timestamp")
	}
}

func TestStore_SaveValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name   string
		record Record
		want   error
	}{
		{"empty question", Record{Rating: 3}, ErrEmptyQuestion},
		{"rating too low", Record{Question: "q", Rating: 0}, ErrInvalidRating},
		{"rating too high", Record{Question: "q", Rating: 6}, ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Save(tt.record); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Save(Record{
			Question:  "question",
			Rating:    i + 1,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	records, err := store.List(0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Rating != 3 || records[2].Rating != 1 {
		t.Errorf("expected newest first, got ratings %d, %d, %d",
			records[0].Rating, records[1].Rating, records[2].Rating)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("limited list failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records with limit, got %d", len(limited))
	}
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)

	for _, record := range []Record{
		{Question: "q1", Rating: 5, Category: "anxiety_fear"},
		{Question: "q2", Rating: 3, Category: "anxiety_fear"},
		{Question: "q3", Rating: 4, Category: "grief_loss"},
	} {
		if _, err := store.Save(record); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.AverageRating != 4.0 {
		t.Errorf("expected average 4.0, got %f", stats.AverageRating)
	}
	if stats.ByCategory["anxiety_fear"] != 2 {
		t.Errorf("expected 2 anxiety_fear records, got %d", stats.ByCategory["anxiety_fear"])
	}
	if stats.ByRating[5] != 1 {
		t.Errorf("expected 1 five-star record, got %d", stats.ByRating[5])
	}
}

func TestStore_StatsEmpty(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 0 || stats.AverageRating != 0 {
		t.Errorf("expected empty summary, got %+v", stats)
	}
}
