package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validExtractionJSON = `{
	"requirements": [
		{
			"id": "R1",
			"title": "User login",
			"description": "Users can sign in with email and password",
			"priority": "Critical",
			"estimated_hours": 8,
			"acceptance_criteria": ["Valid credentials succeed", "Invalid credentials are rejected"]
		},
		{
			"id": "R2",
			"title": "Password reset"
		}
	],
	"document_summary": "Authentication PRD",
	"total_requirements": 2
}`

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "plain JSON",
			raw:  validExtractionJSON,
		},
		{
			name: "wrapped in json code fence",
			raw:  "```json\n" + validExtractionJSON + "\n```",
		},
		{
			name: "wrapped in bare code fence",
			raw:  "```\n" + validExtractionJSON + "\n```",
		},
		{
			name: "leading fence only",
			raw:  "```json\n" + validExtractionJSON,
		},
		{
			name: "surrounding whitespace",
			raw:  "\n\n  " + validExtractionJSON + "  \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseExtraction(tt.raw)
			require.NoError(t, err)

			// Fence-stripping must be lossless: every wrapped form
			// parses to the same result as the plain JSON.
			require.Len(t, result.Requirements, 2)
			assert.Equal(t, "R1", result.Requirements[0].ID)
			assert.Equal(t, "User login", result.Requirements[0].Title)
			assert.Equal(t, "Critical", result.Requirements[0].Priority)
			assert.Equal(t, 8, result.Requirements[0].EstimatedHours)
			assert.Equal(t, []string{
				"Valid credentials succeed",
				"Invalid credentials are rejected",
			}, result.Requirements[0].AcceptanceCriteria)

			// Optional fields may be absent on R2.
			assert.Equal(t, "R2", result.Requirements[1].ID)
			assert.Empty(t, result.Requirements[1].Priority)
			assert.Empty(t, result.Requirements[1].Assignee)
			assert.Zero(t, result.Requirements[1].EstimatedHours)
			assert.Empty(t, result.Requirements[1].AcceptanceCriteria)

			assert.Equal(t, "Authentication PRD", result.DocumentSummary)
			assert.Equal(t, 2, result.TotalRequirements)
		})
	}
}

func TestParseExtractionEmpty(t *testing.T) {
	result, err := ParseExtraction("")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrEmptyModelOutput)
}

func TestParseExtractionMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "not JSON at all",
			raw:  "Sorry, I cannot process this document.",
		},
		{
			name: "truncated JSON",
			raw:  `{"requirements": [{"id": "R1", "title": "Log`,
		},
		{
			name: "fence around prose",
			raw:  "```\nnot json\n```",
		},
		{
			name: "requirement missing id",
			raw:  `{"requirements": [{"title": "Login"}], "total_requirements": 1}`,
		},
		{
			name: "requirement missing title",
			raw:  `{"requirements": [{"id": "R1"}], "total_requirements": 1}`,
		},
		{
			name: "wrong shape",
			raw:  `{"requirements": "oops"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseExtraction(tt.raw)
			assert.Nil(t, result)

			var malformed *MalformedOutputError
			require.True(t, errors.As(err, &malformed), "expected MalformedOutputError, got %v", err)

			// The raw model output must survive for diagnostic logging.
			assert.Equal(t, tt.raw, malformed.Raw)
		})
	}
}

func TestParseExtractionAdvisoryFields(t *testing.T) {
	// total_requirements is advisory metadata and is not re-validated
	// against the actual count, and priority is not checked against the
	// controlled vocabulary.
	raw := `{
		"requirements": [{"id": "R1", "title": "Login", "priority": "Urgent"}],
		"total_requirements": 99
	}`

	result, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, 99, result.TotalRequirements)
	assert.Equal(t, "Urgent", result.Requirements[0].Priority)
}

func TestStripCodeFence(t *testing.T) {
	// Stripping must be idempotent for well-formed input.
	once := stripCodeFence("```json\n{\"a\": 1}\n```")
	assert.Equal(t, `{"a": 1}`, once)
	assert.Equal(t, once, stripCodeFence(once))
}
