package analysis

import (
	"context"
	"fmt"

	"github.com/reqbridge/reqbridge/internal/config"
	"github.com/reqbridge/reqbridge/pkg/models"
)

// systemPrompt instructs the model to return the extraction result as a
// JSON object matching the models.ExtractionResult shape.
const systemPrompt = "You are an expert business analyst. " +
	"Extract actionable requirements from the following document. " +
	"Return a JSON object with fields: requirements " +
	"(array of {id, title, description, priority, assignee, estimated_hours, acceptance_criteria}), " +
	"document_summary (brief), and total_requirements (int)."

// Analyzer extracts structured requirements from document text.
type Analyzer interface {
	Analyze(ctx context.Context, documentText string) (*models.ExtractionResult, error)
}

// NewAnalyzer returns the analyzer for the configured backend. Only the
// OpenAI backend is implemented; the other recognized backends return an
// explicit error so callers fail at startup rather than mid-pipeline.
func NewAnalyzer(cfg *config.Config) (Analyzer, error) {
	switch cfg.Analysis.Backend {
	case config.BackendOpenAI:
		return NewOpenAIAnalyzer(cfg.Analysis.OpenAIAPIKey, cfg.Analysis.OpenAIModel), nil
	case config.BackendClaude:
		return nil, fmt.Errorf("claude analysis backend is not implemented")
	case config.BackendLocal:
		return nil, fmt.Errorf("local analysis backend is not implemented")
	default:
		return nil, fmt.Errorf("unknown analysis backend: %q", cfg.Analysis.Backend)
	}
}
