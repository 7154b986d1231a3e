// Package evals runs scripted quality checks against the guidance pipeline:
// each case asks a question and asserts properties of the answer rather than
// exact text.
package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Yates-Labs/sage/internal/orchestrator"
)

// Case is one scripted evaluation.
type Case struct {
	ID       string `json:"id"`
	Question string `json:"question"`

	// SkipStory runs the guidance-only fast path
	SkipStory bool `json:"skip_story,omitempty"`

	// ForbiddenPhrases must not appear in the guidance, case-insensitively
	ForbiddenPhrases []string `json:"forbidden_phrases,omitempty"`

	// RequiredOneOf requires at least one of these phrases in the guidance
	RequiredOneOf []string `json:"required_one_of,omitempty"`

	// ExpectStory requires a story with character and source attribution
	ExpectStory bool `json:"expect_story,omitempty"`

	// MaxSeconds bounds the wall time of the request when positive
	MaxSeconds float64 `json:"max_seconds,omitempty"`
}

// LoadCases reads a JSON array of cases from a file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases file: %w", err)
	}

	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse cases file: %w", err)
	}

	for i, c := range cases {
		if c.ID == "" {
			return nil, fmt.Errorf("case %d has no id", i)
		}
		if c.Question == "" {
			return nil, fmt.Errorf("case %q has no question", c.ID)
		}
	}
	return cases, nil
}

// Guider is the pipeline dependency of the runner.
type Guider interface {
	Guide(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
}

// Result is one case's verdict. Failures lists every failed check; a passed
// case has none.
type Result struct {
	CaseID   string        `json:"case_id"`
	Passed   bool          `json:"passed"`
	Failures []string      `json:"failures,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Outcome  string        `json:"outcome,omitempty"`
}

// Summary is a full run.
type Summary struct {
	Results []Result  `json:"results"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
	RanAt   time.Time `json:"ran_at"`
}

// minGuidanceChars is the floor below which guidance counts as a non-answer.
const minGuidanceChars = 50

// Runner executes cases sequentially against a pipeline.
type Runner struct {
	pipeline Guider
}

// NewRunner creates a runner over the given pipeline.
func NewRunner(pipeline Guider) *Runner {
	return &Runner{pipeline: pipeline}
}

// Run executes all cases and aggregates their results.
func (r *Runner) Run(ctx context.Context, cases []Case) *Summary {
	summary := &Summary{RanAt: time.Now().UTC()}

	for i, c := range cases {
		log.Printf("[Evals] Running case %d/%d: %s", i+1, len(cases), c.ID)
		result := r.runCase(ctx, c)
		summary.Results = append(summary.Results, result)
		if result.Passed {
			summary.Passed++
		} else {
			summary.Failed++
			log.Printf("[Evals] Case %s failed: %s", c.ID, strings.Join(result.Failures, "; "))
		}
	}

	return summary
}

func (r *Runner) runCase(ctx context.Context, c Case) Result {
	result := Result{CaseID: c.ID}

	start := time.Now()
	resp, err := r.pipeline.Guide(ctx, orchestrator.Request{Problem: c.Question, SkipStory: c.SkipStory})
	result.Duration = time.Since(start)

	if err != nil {
		result.Failures = append(result.Failures, fmt.Sprintf("request failed: %v", err))
		return result
	}
	result.Outcome = string(resp.Outcome)

	guidanceText := strings.TrimSpace(resp.Guidance)
	if len(guidanceText) <= minGuidanceChars {
		result.Failures = append(result.Failures,
			fmt.Sprintf("guidance too short: %d chars", len(guidanceText)))
	}

	lower := strings.ToLower(guidanceText)
	for _, phrase := range c.ForbiddenPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			result.Failures = append(result.Failures,
				fmt.Sprintf("forbidden phrase present: %q", phrase))
		}
	}

	if len(c.RequiredOneOf) > 0 {
		found := false
		for _, phrase := range c.RequiredOneOf {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				found = true
				break
			}
		}
		if !found {
			result.Failures = append(result.Failures,
				fmt.Sprintf("none of the required phrases present: %v", c.RequiredOneOf))
		}
	}

	if c.ExpectStory {
		switch {
		case resp.Story == nil:
			result.Failures = append(result.Failures, "expected a story, got none")
		case strings.TrimSpace(resp.Story.Star.Character) == "":
			result.Failures = append(result.Failures, "story has no character")
		case strings.TrimSpace(resp.Story.Star.SourceCitation) == "":
			result.Failures = append(result.Failures, "story has no source citation")
		}
	}

	if c.MaxSeconds > 0 && result.Duration.Seconds() > c.MaxSeconds {
		result.Failures = append(result.Failures,
			fmt.Sprintf("took %.2fs, limit %.2fs", result.Duration.Seconds(), c.MaxSeconds))
	}

	result.Passed = len(result.Failures) == 0
	return result
}

// WriteReport writes the summary as indented JSON.
func WriteReport(summary *Summary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
