// Package pipeline sequences document analysis, human review, and ticket
// creation.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/reqbridge/reqbridge/internal/analysis"
	"github.com/reqbridge/reqbridge/internal/document"
	"github.com/reqbridge/reqbridge/internal/logging"
	"github.com/reqbridge/reqbridge/internal/review"
	"github.com/reqbridge/reqbridge/pkg/models"
)

// ErrReviewNotFound indicates a confirmation arrived for a review that was
// never stored, already consumed, or evicted. Callers should ask the user
// to re-upload the document.
var ErrReviewNotFound = review.ErrNotFound

// TicketCreator is the issue-tracker write path consumed by the pipeline.
type TicketCreator interface {
	CreateTickets(ctx context.Context, requirements []models.Requirement) ([]models.CreatedTicket, error)
}

// ReviewSummary is what the chat layer presents to the human for
// confirmation: the cache key plus the extracted requirements.
type ReviewSummary struct {
	Key             string
	Requirements    []models.Requirement
	DocumentSummary string
	Total           int
}

// Pipeline wires the analyzer, the pending-review store, and the ticket
// creator. Extraction and ticket creation are decoupled by the store so
// the unbounded human-confirmation wait never holds a lock or connection.
type Pipeline struct {
	analyzer analysis.Analyzer
	store    *review.Store
	tickets  TicketCreator
}

// New creates a pipeline.
func New(analyzer analysis.Analyzer, store *review.Store, tickets TicketCreator) *Pipeline {
	return &Pipeline{
		analyzer: analyzer,
		store:    store,
		tickets:  tickets,
	}
}

// HandleDocument extracts text from an uploaded document, runs the model
// analysis, and stores the extracted requirements for review. The returned
// summary carries the cache key the confirmation event must echo back.
func (p *Pipeline) HandleDocument(ctx context.Context, data []byte, filename string) (*ReviewSummary, error) {
	text, err := document.ExtractText(data, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %q: %w", filename, err)
	}

	logging.Debug("extracted document text",
		"filename", filename,
		"bytes", len(data),
		"text_length", len(text))

	result, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		// The raw model output is only ever logged, never shown to
		// the user.
		var malformed *analysis.MalformedOutputError
		if errors.As(err, &malformed) {
			logging.Error("model returned unparseable output",
				"filename", filename,
				"error", malformed.Err,
				"raw", malformed.Raw)
		}
		return nil, fmt.Errorf("analysis of %q failed: %w", filename, err)
	}

	key := p.store.Put(result.Requirements)

	logging.Info("stored extraction for review",
		"filename", filename,
		"key", key,
		"requirements", len(result.Requirements))

	return &ReviewSummary{
		Key:             key,
		Requirements:    result.Requirements,
		DocumentSummary: result.DocumentSummary,
		Total:           result.TotalRequirements,
	}, nil
}

// Confirm consumes the pending review for key and creates one ticket per
// requirement. Retrieval is destructive, so a second confirmation with the
// same key returns ErrReviewNotFound. On a terminal creation failure the
// tickets created before it are returned alongside the error.
func (p *Pipeline) Confirm(ctx context.Context, key string) ([]models.CreatedTicket, error) {
	requirements, err := p.store.Take(key)
	if err != nil {
		return nil, err
	}

	return p.tickets.CreateTickets(ctx, requirements)
}
