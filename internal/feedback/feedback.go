// Package feedback persists seeker feedback on answers. Records are small
// JSON values in an embedded badger store, keyed by UUID.
package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const keyPrefix = "feedback:"

// Common errors for feedback operations
var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyQuestion = errors.New("question cannot be empty")
)

// Record is one piece of seeker feedback. Category and QuestionType come
// from the best-effort classifier and may be "other".
type Record struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	Category     string    `json:"category,omitempty"`
	QuestionType string    `json:"question_type,omitempty"`
	StoryShown   bool      `json:"story_shown"`
	CreatedAt    time.Time `json:"created_at"`
}

// Config holds the store parameters.
type Config struct {
	// Path is the on-disk database directory; ignored when InMemory is set
	Path string

	// InMemory keeps all data in memory, used by tests
	InMemory bool

	// SyncWrites forces an fsync per write
	SyncWrites bool
}

// DefaultConfig returns the on-disk defaults.
func DefaultConfig() Config {
	return Config{Path: "data/feedback", SyncWrites: false}
}

// Store persists feedback records.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the feedback store.
func Open(config Config) (*Store, error) {
	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(config.Path).WithSyncWrites(config.SyncWrites)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save validates and persists a record. A missing ID or timestamp is filled
// in; the stored record is returned.
func (s *Store) Save(record Record) (Record, error) {
	if strings.TrimSpace(record.Question) == "" {
		return Record{}, ErrEmptyQuestion
	}
	if record.Rating < 1 || record.Rating > 5 {
		return Record{}, fmt.Errorf("%w: got %d", ErrInvalidRating, record.Rating)
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode feedback record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+record.ID), value)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to save feedback record: %w", err)
	}

	return record, nil
}

// List returns records newest first. A non-positive limit returns all
// records.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var record Record
				if err := json.Unmarshal(value, &record); err != nil {
					return fmt.Errorf("corrupt feedback record at %s: %w", it.Item().Key(), err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Summary aggregates the stored feedback.
type Summary struct {
	Total         int            `json:"total"`
	AverageRating float64        `json:"average_rating"`
	ByRating      map[int]int    `json:"by_rating"`
	ByCategory    map[string]int `json:"by_category"`
}

// Stats aggregates all stored records.
func (s *Store) Stats() (*Summary, error) {
	records, err := s.List(0)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Total:      len(records),
		ByRating:   make(map[int]int),
		ByCategory: make(map[string]int),
	}

	sum := 0
	for _, record := range records {
		sum += record.Rating
		summary.ByRating[record.Rating]++
		if record.Category != "" {
			summary.ByCategory[record.Category]++
		}
	}
	if summary.Total > 0 {
		summary.AverageRating = float64(sum) / float64(summary.Total)
	}

	return summary, nil
}
