package slack

import (
	"errors"
	"fmt"
	"strings"

	slack "github.com/slack-go/slack"

	"github.com/reqbridge/reqbridge/internal/jira"
	"github.com/reqbridge/reqbridge/internal/pipeline"
	"github.com/reqbridge/reqbridge/pkg/models"
)

// reviewBlocks renders the extracted requirements plus the confirmation
// button. The button value carries the pending-review cache key.
func reviewBlocks(summary *pipeline.ReviewSummary) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Found %d requirements:*", summary.Total), false, false),
			nil, nil),
	}

	for _, req := range summary.Requirements {
		line := fmt.Sprintf("• *%s*: %s", req.ID, req.Title)
		if req.Priority != "" {
			line += fmt.Sprintf(" _(Priority: %s)_", req.Priority)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, line, false, false),
			nil, nil))
	}

	button := slack.NewButtonBlockElement(actionCreateTickets, summary.Key,
		slack.NewTextBlockObject(slack.PlainTextType, "Create Jira Tickets", false, false))
	button.Style = slack.StylePrimary

	return append(blocks, slack.NewActionBlock("review_actions", button))
}

// ticketListText renders created tickets as clickable links, one per line.
func ticketListText(tickets []models.CreatedTicket) string {
	lines := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		lines = append(lines, fmt.Sprintf("• <%s|%s> for %s",
			ticket.TicketURL, ticket.TicketKey, ticket.RequirementID))
	}
	return strings.Join(lines, "\n")
}

// ticketFailureText reports a terminal creation failure, keeping any
// tickets that were created before it visible to the user.
func ticketFailureText(created []models.CreatedTicket, err error) string {
	var failed *jira.CreateError
	detail := ""
	if errors.As(err, &failed) {
		detail = fmt.Sprintf(" (requirement %s)", failed.RequirementID)
	}

	if len(created) == 0 {
		return ":x: Failed to create Jira tickets" + detail + "."
	}

	return fmt.Sprintf(":x: Ticket creation stopped%s after %d tickets were created:\n%s",
		detail, len(created), ticketListText(created))
}
