// Package analysis turns document text into a validated list of
// requirements using a language-model backend.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/reqbridge/reqbridge/pkg/models"
)

// ErrEmptyModelOutput indicates the model returned no content at all.
var ErrEmptyModelOutput = errors.New("model response did not contain any content")

// MalformedOutputError indicates the model output could not be parsed into
// an extraction result. Raw preserves the original model output for
// diagnostic logging by the caller; it must not be discarded.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("could not parse model response: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// stripCodeFence removes a single wrapping markdown code-fence line pair
// (``` or ```json) from s. It only inspects the first and last line of the
// trimmed input; it is not a markdown parser.
func stripCodeFence(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// ParseExtraction parses raw model output text into an ExtractionResult.
//
// It returns ErrEmptyModelOutput when raw is empty, and a
// *MalformedOutputError when the text is not valid JSON after
// fence-stripping or when any requirement is missing its id or title.
// No repair of malformed JSON is attempted here.
func ParseExtraction(raw string) (*models.ExtractionResult, error) {
	if raw == "" {
		return nil, ErrEmptyModelOutput
	}

	content := stripCodeFence(raw)

	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}

	for i, req := range result.Requirements {
		if err := req.Validate(); err != nil {
			return nil, &MalformedOutputError{
				Raw: raw,
				Err: fmt.Errorf("requirement %d: %w", i, err),
			}
		}
	}

	return &result, nil
}
