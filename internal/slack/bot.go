// Package slack connects the pipeline to Slack over Socket Mode.
package slack

import (
	"bytes"
	"context"
	"errors"
	"strings"

	slack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/reqbridge/reqbridge/internal/config"
	"github.com/reqbridge/reqbridge/internal/logging"
	"github.com/reqbridge/reqbridge/internal/pipeline"
)

// actionCreateTickets is the block action ID carried by the review button.
const actionCreateTickets = "create_tickets"

// Bot handles Slack events: document uploads start the pipeline, and the
// review button confirms ticket creation.
type Bot struct {
	api      *slack.Client
	socket   *socketmode.Client
	pipeline *pipeline.Pipeline
}

// NewBot creates a Socket Mode bot bound to the given pipeline.
func NewBot(cfg *config.Config, p *pipeline.Pipeline) *Bot {
	api := slack.New(cfg.Slack.BotToken, slack.OptionAppLevelToken(cfg.Slack.AppToken))

	return &Bot{
		api:      api,
		socket:   socketmode.New(api),
		pipeline: p,
	}
}

// Run starts the Socket Mode listener and blocks until ctx is cancelled or
// the connection fails.
func (b *Bot) Run(ctx context.Context) error {
	go b.dispatchEvents(ctx)
	return b.socket.RunContext(ctx)
}

// dispatchEvents acknowledges Socket Mode envelopes and fans each event
// out to its own goroutine, so a rate-limit wait during ticket creation
// never blocks other in-flight documents or confirmations.
func (b *Bot) dispatchEvents(ctx context.Context) {
	for envelope := range b.socket.Events {
		switch envelope.Type {
		case socketmode.EventTypeEventsAPI:
			event, ok := envelope.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			b.socket.Ack(*envelope.Request)
			go b.handleEventsAPI(ctx, event)

		case socketmode.EventTypeInteractive:
			callback, ok := envelope.Data.(slack.InteractionCallback)
			if !ok {
				continue
			}
			b.socket.Ack(*envelope.Request)
			go b.handleInteraction(ctx, callback)

		case socketmode.EventTypeConnectionError:
			logging.Warn("slack connection error", "data", envelope.Data)
		}
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}

	message, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || message.BotID != "" {
		return
	}

	// Liveness check.
	if message.SubType == "" && strings.TrimSpace(message.Text) == "ping" {
		b.post(ctx, message.Channel, "", "pong")
		return
	}

	if message.SubType != "file_share" || len(message.Files) == 0 {
		return
	}

	b.handleFileShare(ctx, message)
}

// handleFileShare downloads the shared document, runs extraction and
// analysis, and posts the review message with the confirmation button.
func (b *Bot) handleFileShare(ctx context.Context, message *slackevents.MessageEvent) {
	b.post(ctx, message.Channel, "", ":hourglass: Processing your document…")

	fileID := message.Files[0].ID
	info, _, _, err := b.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		logging.Error("failed to fetch file info", "file", fileID, "error", err)
		b.post(ctx, message.Channel, "", ":x: Failed to fetch file. Check permissions.")
		return
	}

	var data bytes.Buffer
	if err := b.api.GetFileContext(ctx, info.URLPrivateDownload, &data); err != nil {
		logging.Error("failed to download file", "file", fileID, "error", err)
		b.post(ctx, message.Channel, "", ":x: Could not download the document.")
		return
	}

	summary, err := b.pipeline.HandleDocument(ctx, data.Bytes(), info.Name)
	if err != nil {
		// The failure taxonomy is only distinguished in the logs; the
		// user gets one generic message.
		logging.Error("document analysis failed",
			"file", info.Name,
			"error", err)
		b.post(ctx, message.Channel, "", ":x: Unexpected error processing your document.")
		return
	}

	_, _, err = b.api.PostMessageContext(ctx, message.Channel,
		slack.MsgOptionText("Document analysis complete! Review below:", false),
		slack.MsgOptionBlocks(reviewBlocks(summary)...))
	if err != nil {
		logging.Error("failed to post review message", "error", err)
	}
}

// handleInteraction consumes the review-button click and drives ticket
// creation.
func (b *Bot) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	if callback.Type != slack.InteractionTypeBlockActions {
		return
	}

	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID != actionCreateTickets {
			continue
		}

		channel := callback.Channel.ID
		threadTS := callback.Message.Timestamp

		tickets, err := b.pipeline.Confirm(ctx, action.Value)
		switch {
		case errors.Is(err, pipeline.ErrReviewNotFound):
			b.post(ctx, channel, threadTS,
				":x: Sorry, I no longer have that analysis cached. Please re-upload the document.")

		case err != nil:
			logging.Error("ticket creation failed",
				"key", action.Value,
				"created", len(tickets),
				"error", err)
			b.post(ctx, channel, threadTS, ticketFailureText(tickets, err))

		default:
			b.post(ctx, channel, threadTS,
				"Created the following Jira tickets:\n"+ticketListText(tickets))
		}
	}
}

// post sends a plain text message, threaded when threadTS is set. Posting
// failures are logged and otherwise dropped; there is nowhere else to
// surface them.
func (b *Bot) post(ctx context.Context, channel, threadTS, text string) {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}

	if _, _, err := b.api.PostMessageContext(ctx, channel, options...); err != nil {
		logging.Error("failed to post slack message", "channel", channel, "error", err)
	}
}
