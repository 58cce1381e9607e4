package analysis

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/reqbridge/reqbridge/internal/logging"
	"github.com/reqbridge/reqbridge/pkg/models"
)

// OpenAIAnalyzer extracts requirements using OpenAI chat completions.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer creates an analyzer backed by the OpenAI API.
func NewOpenAIAnalyzer(apiKey, model string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Analyze sends the document text to the model and parses the response
// into an extraction result.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, documentText string) (*models.ExtractionResult, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		// Low temperature keeps the output shape stable across runs.
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: documentText},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyModelOutput
	}

	logging.Debug("received model response",
		"model", a.model,
		"length", len(resp.Choices[0].Message.Content))

	return ParseExtraction(resp.Choices[0].Message.Content)
}
