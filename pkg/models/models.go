// Package models defines data structures shared across the application.
package models

import "fmt"

// Requirement represents one atomic unit of work extracted from a document.
//
// Only ID and Title are guaranteed to be present after a successful parse.
// Every other field may be empty and consumers must tolerate that. An empty
// Priority/Assignee or a zero EstimatedHours means the model did not supply
// the field.
type Requirement struct {
	// ID is an opaque identifier supplied by the model. It is unique
	// within one extraction result but not globally.
	ID string `json:"id"`

	// Title is the requirement's summary line.
	Title string `json:"title"`

	// Description is the full body text of the requirement, if any.
	Description string `json:"description,omitempty"`

	// Priority is expected to be one of "Critical", "Major" or "Minor",
	// but the vocabulary is not enforced here. Downstream mapping must
	// tolerate unknown values.
	Priority string `json:"priority,omitempty"`

	// Assignee is an account ID in the issue tracker's identity space.
	Assignee string `json:"assignee,omitempty"`

	// EstimatedHours is a non-negative estimate in hours, zero if absent.
	EstimatedHours int `json:"estimated_hours,omitempty"`

	// AcceptanceCriteria is an ordered list of criteria. Order is the
	// display order and is preserved from the model output.
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// Validate checks the required-field constraints that must hold after
// parsing. All other fields are optional.
func (r Requirement) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("requirement is missing an id")
	}
	if r.Title == "" {
		return fmt.Errorf("requirement %q is missing a title", r.ID)
	}
	return nil
}

// ExtractionResult is the full model output for one analyzed document.
// It is immutable once created.
type ExtractionResult struct {
	// Requirements preserves the order the model emitted them in.
	Requirements []Requirement `json:"requirements"`

	// DocumentSummary is optional free text describing the document.
	DocumentSummary string `json:"document_summary,omitempty"`

	// TotalRequirements is advisory metadata from the model. It is
	// expected to equal len(Requirements) but is not re-validated.
	TotalRequirements int `json:"total_requirements"`
}

// CreatedTicket is one row of pipeline output: a successfully created
// issue-tracker ticket for a single requirement.
type CreatedTicket struct {
	// RequirementID is the source Requirement's ID.
	RequirementID string `json:"requirement_id"`

	// TicketKey is the tracker-assigned identifier (e.g., "PROJ-123").
	TicketKey string `json:"ticket_key"`

	// TicketURL is a fully qualified link to the created ticket.
	TicketURL string `json:"ticket_url"`
}
