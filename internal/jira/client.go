// Package jira creates issue-tracker tickets for confirmed requirements.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/reqbridge/reqbridge/internal/config"
	"github.com/reqbridge/reqbridge/internal/logging"
	"github.com/reqbridge/reqbridge/pkg/models"
)

// maxCreateRetries is the rate-limit retry budget per requirement.
const maxCreateRetries = 3

// defaultRetryAfter is used when a 429 response carries no Retry-After header.
const defaultRetryAfter = 60 * time.Second

// priorityMapping translates requirement priorities to Jira priorities.
// Requirement documents use "Critical"/"Major"/"Minor"; Jira projects
// typically use "High"/"Medium"/"Low".
var priorityMapping = map[string]string{
	"Critical": "High",
	"Major":    "Medium",
	"Minor":    "Low",
}

// MapPriority translates a requirement priority to a Jira priority name.
// Values outside the known vocabulary pass through unchanged.
func MapPriority(priority string) string {
	if mapped, ok := priorityMapping[priority]; ok {
		return mapped
	}
	return priority
}

// CreateError reports a terminal ticket-creation failure for one
// requirement. Tickets created before the failure are still returned to
// the caller alongside this error; there are no compensating deletes.
type CreateError struct {
	RequirementID string
	Err           error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create ticket for requirement %q: %v", e.RequirementID, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// Client handles interactions with the JIRA REST API.
//
// Issue creation talks to the v3 endpoint directly: the engine must branch
// on 429 Retry-After headers and field-level error payloads, and the v3 API
// requires an Atlassian Document Format description, none of which the
// typed go-jira create wrapper exposes. Authentication still goes through
// go-jira's BasicAuthTransport.
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectKey string
	maxRetries int

	// sleep and jitter are replaceable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewClient creates a new JIRA client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Jira.Email,
		Password: cfg.Jira.Token,
	}

	logging.Debug("jira configuration",
		"url", cfg.Jira.URL,
		"email", cfg.Jira.Email,
		"token", logging.MaskSensitive(cfg.Jira.Token),
		"project", cfg.Jira.ProjectKey)

	return &Client{
		httpClient: tp.Client(),
		baseURL:    strings.TrimRight(cfg.Jira.URL, "/"),
		projectKey: cfg.Jira.ProjectKey,
		maxRetries: maxCreateRetries,
		sleep:      sleepContext,
		jitter: func() time.Duration {
			// 0-1s of jitter avoids synchronized retry storms when
			// several confirmations hit the rate limit together.
			return time.Duration(rand.Int63n(int64(time.Second)))
		},
	}, nil
}

// CreateTickets creates one Jira ticket per requirement, in input order.
//
// Each requirement is an independent create call; a failure does not roll
// back previously created tickets. On the first terminal failure the
// remaining batch is aborted and the tickets created so far are returned
// together with a *CreateError.
func (c *Client) CreateTickets(ctx context.Context, requirements []models.Requirement) ([]models.CreatedTicket, error) {
	created := make([]models.CreatedTicket, 0, len(requirements))

	for _, req := range requirements {
		ticket, err := c.createOne(ctx, req)
		if err != nil {
			return created, &CreateError{RequirementID: req.ID, Err: err}
		}

		logging.Info("created jira ticket",
			"requirement", req.ID,
			"key", ticket.TicketKey)

		created = append(created, ticket)
	}

	return created, nil
}

// attemptStatus tags the outcome of a single create call.
type attemptStatus int

const (
	attemptCreated attemptStatus = iota
	attemptRateLimited
	attemptPriorityRejected
	attemptFailed
)

// attemptResult is the tagged outcome of one POST to the issue endpoint.
// Keeping the retry branching on an explicit result type keeps the retry
// count and jitter behavior independently testable.
type attemptResult struct {
	status     attemptStatus
	key        string
	retryAfter time.Duration
	err        error
}

// createOne drives the per-requirement retry state machine: rate limits
// are retried up to maxRetries with the server-advised wait plus jitter,
// and a priority-field rejection is retried exactly once with the priority
// removed. Anything else is terminal.
func (c *Client) createOne(ctx context.Context, req models.Requirement) (models.CreatedTicket, error) {
	fields := c.buildFields(req)
	retries := 0
	priorityStripped := false

	for {
		result := c.attemptCreate(ctx, fields)

		switch result.status {
		case attemptCreated:
			return models.CreatedTicket{
				RequirementID: req.ID,
				TicketKey:     result.key,
				TicketURL:     c.baseURL + "/browse/" + result.key,
			}, nil

		case attemptRateLimited:
			if retries >= c.maxRetries {
				return models.CreatedTicket{}, fmt.Errorf("rate limited after %d retries", c.maxRetries)
			}
			retries++
			wait := result.retryAfter + c.jitter()
			logging.Warn("rate limited by jira",
				"requirement", req.ID,
				"wait", wait,
				"retry", retries)
			if err := c.sleep(ctx, wait); err != nil {
				return models.CreatedTicket{}, err
			}

		case attemptPriorityRejected:
			if priorityStripped {
				// Already retried without the field once.
				return models.CreatedTicket{}, result.err
			}
			if _, ok := fields["priority"]; !ok {
				// Rejection without us having sent the field.
				return models.CreatedTicket{}, result.err
			}
			logging.Warn("priority field rejected, retrying without priority",
				"requirement", req.ID)
			delete(fields, "priority")
			priorityStripped = true

		default:
			return models.CreatedTicket{}, result.err
		}
	}
}

// errorResponse is the Jira error payload shape for non-201 responses.
type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// attemptCreate performs one POST against the v3 issue endpoint and tags
// the outcome. It never retries.
func (c *Client) attemptCreate(ctx context.Context, fields map[string]any) attemptResult {
	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return attemptResult{status: attemptFailed, err: fmt.Errorf("failed to encode issue payload: %w", err)}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/api/3/issue", bytes.NewReader(body))
	if err != nil {
		return attemptResult{status: attemptFailed, err: fmt.Errorf("failed to build issue request: %w", err)}
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return attemptResult{status: attemptFailed, err: fmt.Errorf("jira request failed: %w", err)}
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusCreated:
		var issue struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(response.Body).Decode(&issue); err != nil {
			return attemptResult{status: attemptFailed, err: fmt.Errorf("failed to decode created issue: %w", err)}
		}
		return attemptResult{status: attemptCreated, key: issue.Key}

	case response.StatusCode == http.StatusTooManyRequests:
		return attemptResult{status: attemptRateLimited, retryAfter: retryAfterDuration(response)}

	default:
		var apiErr errorResponse
		if err := json.NewDecoder(response.Body).Decode(&apiErr); err != nil {
			return attemptResult{
				status: attemptFailed,
				err:    fmt.Errorf("jira api error: status %d", response.StatusCode),
			}
		}

		errValue := fmt.Errorf("jira api error: %v %v", apiErr.ErrorMessages, apiErr.Errors)
		if _, ok := apiErr.Errors["priority"]; ok {
			return attemptResult{status: attemptPriorityRejected, err: errValue}
		}
		return attemptResult{status: attemptFailed, err: errValue}
	}
}

// buildFields maps a requirement onto the Jira issue-create payload. The
// fields are a plain map so the priority-rejection fallback can delete the
// field before retrying.
func (c *Client) buildFields(req models.Requirement) map[string]any {
	fields := map[string]any{
		"project":     map[string]string{"key": c.projectKey},
		"summary":     req.Title,
		"description": adfParagraph(req.Description),
		"issuetype":   map[string]string{"name": "Task"},
		"labels":      []string{"automated", "prd-generated"},
	}

	if req.Priority != "" {
		fields["priority"] = map[string]string{"name": MapPriority(req.Priority)}
	}
	if req.Assignee != "" {
		fields["assignee"] = map[string]string{"accountId": req.Assignee}
	}
	if req.EstimatedHours > 0 {
		fields["timetracking"] = map[string]string{
			"originalEstimate": fmt.Sprintf("%dh", req.EstimatedHours),
		}
	}

	return fields
}

// adfParagraph wraps plain text into a minimal Atlassian Document Format
// document with a single paragraph, as required by the v3 description field.
func adfParagraph(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	}
}

// retryAfterDuration reads the server-advised wait from a 429 response,
// defaulting to 60 seconds when the header is absent or unparseable.
func retryAfterDuration(response *http.Response) time.Duration {
	header := response.Header.Get("Retry-After")
	if header == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// sleepContext waits for d or until the context is cancelled. The wait
// blocks only the unit of work processing this requirement.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
