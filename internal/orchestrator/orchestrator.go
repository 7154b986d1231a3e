// Package orchestrator wires retrieval, guidance, and the story pipeline
// into a single request-scoped flow. A Pipeline is constructed once and
// reused across requests; it holds no per-request state.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Yates-Labs/sage/internal/corpus"
	"github.com/Yates-Labs/sage/internal/guidance"
	"github.com/Yates-Labs/sage/internal/llm"
	"github.com/Yates-Labs/sage/internal/rag"
	"github.com/Yates-Labs/sage/internal/story"
)

// Config holds configuration for the guidance pipeline.
type Config struct {
	// TopK is the number of passages retrieved per request
	TopK int

	// StoryPassages is how many of the retrieved passages feed the story
	// pipeline; must not exceed TopK
	StoryPassages int

	// EmbedderModel is the embedding model (e.g. "text-embedding-3-large")
	EmbedderModel string

	// EmbedderDimension is the vector dimension for embeddings
	EmbedderDimension int

	// LLM holds the chat model configuration shared by all stages
	LLM llm.Config

	// Guidance holds the advisor configuration
	Guidance guidance.Config

	// Gate holds the story eligibility gate configuration
	Gate story.GateConfig

	// Milvus holds the vector store configuration
	Milvus rag.MilvusConfig
}

// DefaultConfig returns sensible defaults, honoring SAGE_TOP_K and
// SAGE_STORY_PASSAGES when set.
func DefaultConfig() Config {
	topK := envInt("SAGE_TOP_K", 5)
	storyPassages := envInt("SAGE_STORY_PASSAGES", 3)
	if storyPassages > topK {
		storyPassages = topK
	}

	return Config{
		TopK:              topK,
		StoryPassages:     storyPassages,
		EmbedderModel:     "text-embedding-3-large",
		EmbedderDimension: 3072,
		LLM:               llm.DefaultConfig(),
		Guidance:          guidance.DefaultConfig(),
		Gate:              story.DefaultGateConfig(),
		Milvus:            rag.DefaultMilvusConfig(),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// searcher is the retrieval dependency of the pipeline.
type searcher interface {
	Search(ctx context.Context, query string, k int) ([]rag.SourcePassage, error)
}

// Request is one seeker question.
type Request struct {
	// Problem is the seeker's question or description of their situation
	Problem string

	// SkipStory omits every story stage, leaving a single guidance call
	SkipStory bool
}

// Response is the answer to one request. Story is nil when no story was
// produced; Guidance is always non-empty on success.
type Response struct {
	Guidance    string                   `json:"guidance"`
	Story       *story.NarrativeResult   `json:"story,omitempty"`
	Outcome     story.Outcome            `json:"outcome,omitempty"`
	Eligibility story.EligibilityVerdict `json:"eligibility"`
}

// Pipeline orchestrates retrieval, guidance generation, and the story
// pipeline. Safe for concurrent use: all shared clients are stateless or
// internally synchronized, and no request state outlives Guide.
type Pipeline struct {
	config      Config
	embedder    rag.Embedder
	vectorStore rag.VectorStore
	retriever   searcher
	advisor     *guidance.Advisor
	classifier  *guidance.Classifier
	stories     *story.Pipeline
}

// New constructs the pipeline from configuration: embedder, vector store,
// retriever, chat model, advisor, classifier, and story stages.
func New(ctx context.Context, config Config) (*Pipeline, error) {
	if config.TopK <= 0 {
		config.TopK = 5
	}
	if config.StoryPassages <= 0 || config.StoryPassages > config.TopK {
		config.StoryPassages = min(3, config.TopK)
	}

	embedder, err := rag.NewOpenAIEmbedder(config.EmbedderModel, config.EmbedderDimension, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	vectorStore, err := rag.NewMilvusStore(ctx, config.Milvus)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	retriever, err := rag.NewRetriever(embedder, vectorStore)
	if err != nil {
		vectorStore.Close()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	model, err := llm.NewOpenAI(config.LLM)
	if err != nil {
		vectorStore.Close()
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	return &Pipeline{
		config:      config,
		embedder:    embedder,
		vectorStore: vectorStore,
		retriever:   retriever,
		advisor:     guidance.NewAdvisor(model, config.Guidance),
		classifier:  guidance.NewClassifier(model),
		stories:     story.NewPipeline(model, config.Gate),
	}, nil
}

// Close releases resources held by the pipeline.
func (p *Pipeline) Close() error {
	if p.vectorStore != nil {
		return p.vectorStore.Close()
	}
	return nil
}

// Guide answers one request. Retrieval and guidance failures are explicit
// errors; every story-stage failure degrades inside the Response instead.
// Retrieval runs once and its passages feed every later stage.
func (p *Pipeline) Guide(ctx context.Context, req Request) (*Response, error) {
	if req.Problem == "" {
		return nil, fmt.Errorf("problem cannot be empty")
	}

	log.Printf("[Pipeline] Stage 1: Retrieving top-%d passages", p.config.TopK)
	passages, err := p.retriever.Search(ctx, req.Problem, p.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	log.Printf("[Pipeline] Retrieved %d passages", len(passages))

	log.Printf("[Pipeline] Stage 2: Generating guidance")
	answer, err := p.advisor.Guide(ctx, req.Problem, passages)
	if err != nil {
		return nil, fmt.Errorf("guidance failed: %w", err)
	}

	response := &Response{Guidance: answer}
	if req.SkipStory {
		return response, nil
	}

	storyPassages := passages
	if len(storyPassages) > p.config.StoryPassages {
		storyPassages = storyPassages[:p.config.StoryPassages]
	}

	log.Printf("[Pipeline] Stage 3: Running story pipeline over %d passages", len(storyPassages))
	result := p.stories.Run(ctx, req.Problem, storyPassages)

	response.Story = result.Story
	response.Outcome = result.Outcome
	response.Eligibility = result.Eligibility
	return response, nil
}

// Support generates a short wellness message for a feeling, without
// retrieval or story stages.
func (p *Pipeline) Support(ctx context.Context, feeling string) (string, error) {
	if feeling == "" {
		return "", fmt.Errorf("feeling cannot be empty")
	}
	return p.advisor.Support(ctx, feeling)
}

// Classify labels a question for feedback analytics. Best-effort.
func (p *Pipeline) Classify(ctx context.Context, question string) guidance.Classification {
	return p.classifier.Classify(ctx, question)
}

// SearchPassages runs a plain top-k retrieval without generation.
func (p *Pipeline) SearchPassages(ctx context.Context, query string, k int) ([]rag.SourcePassage, error) {
	if k <= 0 {
		k = p.config.TopK
	}
	return p.retriever.Search(ctx, query, k)
}

// Stats describes the live pipeline: store statistics plus the models in
// use.
type Stats struct {
	Collection    string                 `json:"collection"`
	EmbedderModel string                 `json:"embedder_model"`
	LLMModel      string                 `json:"llm_model"`
	Store         map[string]interface{} `json:"store"`
}

// Stats reports vector store statistics and the configured models.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	storeStats, err := p.vectorStore.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store stats: %w", err)
	}

	return &Stats{
		Collection:    p.config.Milvus.CollectionName,
		EmbedderModel: p.config.EmbedderModel,
		LLMModel:      p.config.LLM.Model,
		Store:         storeStats,
	}, nil
}

// IndexCorpus embeds and indexes chunked passages into the vector store.
func (p *Pipeline) IndexCorpus(ctx context.Context, passages []corpus.Passage, force bool) error {
	log.Printf("[Pipeline] Indexing %d passages", len(passages))

	opts := rag.DefaultIndexOptions()
	opts.ForceReindex = force
	opts.SkipExisting = !force

	if err := rag.IndexPassages(ctx, passages, p.embedder, p.vectorStore, opts); err != nil {
		return fmt.Errorf("failed to index passages: %w", err)
	}

	log.Printf("[Pipeline] Successfully indexed %d passages", len(passages))
	return nil
}
