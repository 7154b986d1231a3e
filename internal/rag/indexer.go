package rag

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/sage/internal/corpus"
)

// IndexPassages embeds corpus passages and stores them in the vector store.
// This function:
// 1. Optionally deletes existing records (force reindex)
// 2. Optionally skips passages that are already indexed
// 3. Generates embeddings in batches
// 4. Inserts and flushes each batch
func IndexPassages(
	ctx context.Context,
	passages []corpus.Passage,
	embedder Embedder,
	vectorStore VectorStore,
	opts IndexOptions,
) error {
	if len(passages) == 0 {
		return nil
	}

	if embedder == nil {
		return fmt.Errorf("embedder cannot be nil")
	}

	if vectorStore == nil {
		return fmt.Errorf("vector store cannot be nil")
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	// Handle re-indexing: delete existing passages if force reindex is enabled
	if opts.ForceReindex {
		passageIDs := make([]string, len(passages))
		for i, p := range passages {
			passageIDs[i] = p.ID
		}

		if err := vectorStore.Delete(ctx, passageIDs); err != nil {
			return fmt.Errorf("failed to delete existing passages: %w", err)
		}
	}

	passagesToIndex := passages
	if opts.SkipExisting && !opts.ForceReindex {
		passagesToIndex = filterNewPassages(ctx, passages, vectorStore)
	}

	for batchStart := 0; batchStart < len(passagesToIndex); batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(passagesToIndex) {
			batchEnd = len(passagesToIndex)
		}

		batch := passagesToIndex[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}

		embeddingRecords, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings for batch starting at %d: %w", batchStart, err)
		}

		records := make([]PassageRecord, len(batch))
		for i, p := range batch {
			records[i] = PassageRecord{
				PassageID:  p.ID,
				Work:       p.Work,
				Ref:        p.Ref,
				Speaker:    p.Speaker,
				Text:       embeddingRecords[i].Text,
				Embedding:  embeddingRecords[i].Embedding,
				UnitCount:  p.UnitCount,
				ChunkIndex: p.ChunkIndex,
			}
		}

		if err := vectorStore.Insert(ctx, records); err != nil {
			return fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}

		if err := vectorStore.Flush(ctx); err != nil {
			return fmt.Errorf("failed to flush batch starting at %d: %w", batchStart, err)
		}
	}

	return nil
}

// filterNewPassages removes passages that already exist in the vector store
func filterNewPassages(
	ctx context.Context,
	passages []corpus.Passage,
	vectorStore VectorStore,
) []corpus.Passage {
	if len(passages) == 0 {
		return passages
	}

	passageIDs := make([]string, len(passages))
	for i, p := range passages {
		passageIDs[i] = p.ID
	}

	existingMap, err := vectorStore.Query(ctx, passageIDs)
	if err != nil {
		// If the query fails, index everything; the caller will surface any
		// errors during insertion.
		return passages
	}

	newPassages := make([]corpus.Passage, 0, len(passages))
	for _, p := range passages {
		if !existingMap[p.ID] {
			newPassages = append(newPassages, p)
		}
	}

	return newPassages
}
