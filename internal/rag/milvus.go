package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (e.g., 3072 for text-embedding-3-large)
	IndexType      string // Index type (default: "HNSW")
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	collection := os.Getenv("MILVUS_COLLECTION")
	if collection == "" {
		collection = "sage_passages"
	}

	dimension := 3072 // Default for text-embedding-3-large

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      dimension,
		IndexType:      "HNSW",
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// VectorStore defines the interface for passage storage and similarity search.
type VectorStore interface {
	// Insert efficiently inserts multiple passage records in a single operation
	Insert(ctx context.Context, records []PassageRecord) error

	// Flush ensures all pending data is persisted
	Flush(ctx context.Context) error

	// Search performs top-K similarity search with optional filtering
	Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]SourcePassage, error)

	// Query checks which passage IDs exist in the store
	Query(ctx context.Context, passageIDs []string) (map[string]bool, error)

	// Delete removes records by passage IDs
	Delete(ctx context.Context, passageIDs []string) error

	// GetStats returns collection statistics (record count, index status, etc.)
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close releases resources and closes connections
	Close() error
}

// MilvusStore implements VectorStore interface using Milvus
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore creates a new Milvus vector store instance
// Connects to Milvus and ensures the collection exists with proper schema
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil // Collection already exists
	}

	// Define schema for passage embeddings
	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "passage_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "work",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "ref",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "speaker",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
			{
				Name:     "unit_count",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Create HNSW index on embedding field
	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	// Load collection into memory
	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds passage records to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []PassageRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	passageIDs := make([]string, len(records))
	works := make([]string, len(records))
	refs := make([]string, len(records))
	speakers := make([]string, len(records))
	texts := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	unitCounts := make([]int64, len(records))
	chunkIndexes := make([]int64, len(records))

	for i, record := range records {
		if len(record.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: expected %d, got %d for passage %s",
				ErrInvalidDimension, m.config.Dimension, len(record.Embedding), record.PassageID)
		}
		passageIDs[i] = record.PassageID
		works[i] = record.Work
		refs[i] = record.Ref
		speakers[i] = record.Speaker
		texts[i] = record.Text
		embeddings[i] = record.Embedding
		unitCounts[i] = int64(record.UnitCount)
		chunkIndexes[i] = int64(record.ChunkIndex)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("passage_id", passageIDs),
		entity.NewColumnVarChar("work", works),
		entity.NewColumnVarChar("ref", refs),
		entity.NewColumnVarChar("speaker", speakers),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
		entity.NewColumnInt64("unit_count", unitCounts),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	return nil
}

// Flush ensures all pending data is persisted
func (m *MilvusStore) Flush(ctx context.Context) error {
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Search performs top-K similarity search with optional filtering
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]SourcePassage, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	// Build filter expression
	expr := ""
	if opts != nil {
		if len(opts.PassageIDs) > 0 {
			expr = fmt.Sprintf(`passage_id == "%s"`, opts.PassageIDs[0])
			for i := 1; i < len(opts.PassageIDs); i++ {
				expr = fmt.Sprintf(`%s or passage_id == "%s"`, expr, opts.PassageIDs[i])
			}
		}
		if opts.Work != "" {
			workExpr := fmt.Sprintf(`work == "%s"`, opts.Work)
			if expr != "" {
				expr = fmt.Sprintf("(%s) and %s", expr, workExpr)
			} else {
				expr = workExpr
			}
		}
	}

	// Configure search parameters
	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}
	outputFields := []string{"passage_id", "work", "ref", "speaker", "text"}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []SourcePassage{}, nil
	}

	passages := make([]SourcePassage, 0, results[0].ResultCount)

	for i := 0; i < results[0].ResultCount; i++ {
		passage := SourcePassage{
			Score: results[0].Scores[i],
		}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "passage_id":
				passage.PassageID = field.(*entity.ColumnVarChar).Data()[i]
			case "work":
				passage.Work = field.(*entity.ColumnVarChar).Data()[i]
			case "ref":
				passage.Ref = field.(*entity.ColumnVarChar).Data()[i]
			case "speaker":
				passage.Speaker = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				passage.Text = field.(*entity.ColumnVarChar).Data()[i]
			}
		}

		passages = append(passages, passage)
	}

	return passages, nil
}

// Query checks which passage IDs exist in the store
func (m *MilvusStore) Query(ctx context.Context, passageIDs []string) (map[string]bool, error) {
	if len(passageIDs) == 0 {
		return map[string]bool{}, nil
	}

	expr := fmt.Sprintf(`passage_id == "%s"`, passageIDs[0])
	for i := 1; i < len(passageIDs); i++ {
		expr = fmt.Sprintf(`%s or passage_id == "%s"`, expr, passageIDs[i])
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		[]string{"passage_id"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}

	existenceMap := make(map[string]bool, len(passageIDs))
	for _, id := range passageIDs {
		existenceMap[id] = false
	}

	for _, column := range results {
		if column.Name() == "passage_id" {
			if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
				for _, id := range varcharCol.Data() {
					existenceMap[id] = true
				}
			}
		}
	}

	return existenceMap, nil
}

// Delete removes records by passage IDs
func (m *MilvusStore) Delete(ctx context.Context, passageIDs []string) error {
	if len(passageIDs) == 0 {
		return nil
	}

	expr := fmt.Sprintf(`passage_id == "%s"`, passageIDs[0])
	for i := 1; i < len(passageIDs); i++ {
		expr = fmt.Sprintf(`%s or passage_id == "%s"`, expr, passageIDs[i])
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// GetStats returns collection statistics
func (m *MilvusStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return map[string]interface{}{
		"collection": m.config.CollectionName,
		"row_count":  stats["row_count"],
	}, nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
