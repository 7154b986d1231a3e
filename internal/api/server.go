// Package api exposes the guidance pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Yates-Labs/sage/internal/feedback"
	"github.com/Yates-Labs/sage/internal/guidance"
	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/Yates-Labs/sage/internal/rag"
	"github.com/Yates-Labs/sage/internal/story"
)

// Pipeline is the subset of the orchestrator the handlers need. Kept as an
// interface so handlers are testable without Milvus or OpenAI.
type Pipeline interface {
	Guide(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
	Support(ctx context.Context, feeling string) (string, error)
	SearchPassages(ctx context.Context, query string, k int) ([]rag.SourcePassage, error)
	Stats(ctx context.Context) (*orchestrator.Stats, error)
}

// Classifier labels feedback questions. Best-effort.
type Classifier interface {
	Classify(ctx context.Context, question string) guidance.Classification
}

// Config holds the server dependencies.
type Config struct {
	Pipeline   Pipeline
	Feedback   *feedback.Store
	Classifier Classifier
}

// Server is the HTTP API.
type Server struct {
	engine *gin.Engine
	config Config
}

// NewServer builds the router with all routes and middleware registered.
func NewServer(config Config) *Server {
	engine := gin.Default()
	engine.Use(requestID())

	s := &Server{engine: engine, config: config}

	engine.GET("/health", s.handleHealth)

	api := engine.Group("/api")
	api.POST("/guidance", s.handleGuidance)
	api.POST("/wellness", s.handleWellness)
	api.GET("/search", s.handleSearch)
	api.GET("/stats", s.handleStats)
	api.POST("/feedback", s.handleFeedback)

	return s
}

// Run starts the server on the given address. Blocks until the listener
// fails.
func (s *Server) Run(addr string) error {
	log.Printf("[API] Listening on %s", addr)
	return s.engine.Run(addr)
}

// Handler exposes the router, used by tests and custom http.Server setups.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// requestID tags every request with an X-Request-ID, generating one when
// the client did not send its own.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// fail writes the error envelope.
func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"message": message, "code": code}})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type guidanceRequest struct {
	Question  string `json:"question" binding:"required"`
	SkipStory bool   `json:"skip_story"`
}

func (s *Server) handleGuidance(c *gin.Context) {
	var req guidanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	resp, err := s.config.Pipeline.Guide(c.Request.Context(), orchestrator.Request{
		Problem:   req.Question,
		SkipStory: req.SkipStory,
	})
	if err != nil {
		if errors.Is(err, rag.ErrRetrievalFailed) {
			fail(c, http.StatusBadGateway, "retrieval_failed", "passage retrieval is unavailable")
			return
		}
		fail(c, http.StatusInternalServerError, "internal_error", "failed to generate guidance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guidance":   resp.Guidance,
		"story":      flattenStory(resp.Story),
		"outcome":    resp.Outcome,
		"request_id": c.GetString("request_id"),
	})
}

// flattenStory renders a narrative result as the flat wire shape clients
// consume, or nil when there is no story.
func flattenStory(ns *story.NarrativeResult) gin.H {
	if ns == nil {
		return nil
	}
	return gin.H{
		"found":     ns.Star.Found,
		"title":     ns.Star.Title,
		"situation": ns.Star.Situation,
		"task":      ns.Star.Task,
		"action":    ns.Star.Action,
		"result":    ns.Star.Result,
		"source":    ns.Star.SourceCitation,
		"character": ns.Star.Character,
		"narrative": ns.Narrative,
		"corrected": ns.Corrected,
	}
}

type wellnessRequest struct {
	Feeling string `json:"feeling" binding:"required"`
}

func (s *Server) handleWellness(c *gin.Context) {
	var req wellnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "feeling is required")
		return
	}

	message, err := s.config.Pipeline.Support(c.Request.Context(), req.Feeling)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "failed to generate support message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

type searchQuery struct {
	Q string `form:"q" binding:"required"`
	K int    `form:"k"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "q is required")
		return
	}

	passages, err := s.config.Pipeline.SearchPassages(c.Request.Context(), query.Q, query.K)
	if err != nil {
		if errors.Is(err, rag.ErrRetrievalFailed) {
			fail(c, http.StatusBadGateway, "retrieval_failed", "passage retrieval is unavailable")
			return
		}
		fail(c, http.StatusInternalServerError, "internal_error", "search failed")
		return
	}

	results := make([]gin.H, len(passages))
	for i, p := range passages {
		results[i] = gin.H{
			"passage_id": p.PassageID,
			"work":       p.Work,
			"ref":        p.Ref,
			"speaker":    p.Speaker,
			"text":       p.Text,
			"score":      p.Score,
		}
	}
	c.JSON(http.StatusOK, gin.H{"passages": results})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.config.Pipeline.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "failed to read stats")
		return
	}

	payload := gin.H{"corpus": stats}
	if s.config.Feedback != nil {
		fb, err := s.config.Feedback.Stats()
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal_error", "failed to read feedback stats")
			return
		}
		payload["feedback"] = fb
	}
	c.JSON(http.StatusOK, payload)
}

type feedbackRequest struct {
	Question   string `json:"question" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
	StoryShown bool   `json:"story_shown"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "question and rating are required")
		return
	}
	if s.config.Feedback == nil {
		fail(c, http.StatusServiceUnavailable, "feedback_unavailable", "feedback store not configured")
		return
	}

	record := feedback.Record{
		Question:   req.Question,
		Rating:     req.Rating,
		Comment:    req.Comment,
		StoryShown: req.StoryShown,
	}
	if s.config.Classifier != nil {
		label := s.config.Classifier.Classify(c.Request.Context(), req.Question)
		record.Category = label.Category
		record.QuestionType = label.Type
	}

	saved, err := s.config.Feedback.Save(record)
	if err != nil {
		if errors.Is(err, feedback.ErrInvalidRating) || errors.Is(err, feedback.ErrEmptyQuestion) {
			fail(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "internal_error", "failed to save feedback")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": saved.ID})
}
