package rag

import (
	"context"
	"errors"
	"fmt"
)

// ErrRetrievalFailed marks an upstream retrieval failure. Unlike generation
// failures, retrieval failures are fatal to the whole request: without
// passages there is neither guidance nor a story.
var ErrRetrievalFailed = errors.New("passage retrieval failed")

// Retriever is the retrieval gateway: it embeds a query and runs a top-k
// similarity search over the passage collection.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, vectorStore VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
	}, nil
}

// Search returns the top-k passages most similar to the query, ordered by
// retrieval rank. Fewer than k passages may be returned.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]SourcePassage, error) {
	return r.SearchWithOptions(ctx, query, k, nil)
}

// SearchWithOptions performs a filtered top-k search.
func (r *Retriever) SearchWithOptions(ctx context.Context, query string, k int, opts *SearchOptions) ([]SourcePassage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrRetrievalFailed)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrRetrievalFailed, k)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %w", ErrRetrievalFailed, err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("%w: no embedding generated for query", ErrRetrievalFailed)
	}

	queryVector := embeddingRecords[0].Embedding

	passages, err := r.vectorStore.Search(ctx, queryVector, k, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	return passages, nil
}
