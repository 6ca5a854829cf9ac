// Package summary builds the one-line processing summary returned by
// the create-meeting operation.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
)

// Generator produces the summary line for a processed meeting.
type Generator interface {
	Summarize(ctx context.Context, meetingText string, contextCount int) (string, error)
}

// Template is the deterministic default: a fixed line reporting how many
// related historical items were found.
type Template struct{}

// Summarize never fails.
func (Template) Summarize(_ context.Context, _ string, contextCount int) (string, error) {
	if contextCount > 0 {
		return fmt.Sprintf("Successfully processed meeting with %d related historical items", contextCount), nil
	}
	return "Successfully processed meeting (no related context found)", nil
}

const claudeSystemPrompt = "Summarize the meeting transcript in a single plain sentence. " +
	"Mention the main topic and any decision made. Do not add preamble."

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-3-5-haiku-latest"

// Claude generates the summary line with the Anthropic API. Callers are
// expected to fall back to Template on error.
type Claude struct {
	client anthropic.Client
	model  string
}

// NewClaude creates a Claude-backed generator.
func NewClaude(apiKey string, model string) *Claude {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Summarize asks the model for a one-line summary of the meeting text.
func (c *Claude) Summarize(ctx context.Context, meetingText string, contextCount int) (string, error) {
	prompt := meetingText
	if contextCount > 0 {
		prompt = fmt.Sprintf("%s\n\n(%d related historical meetings were found.)", meetingText, contextCount)
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 128,
		System: []anthropic.TextBlockParam{
			{Text: claudeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate summary", goerr.V("model", c.model))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	line := strings.TrimSpace(sb.String())
	if line == "" {
		return "", goerr.New("empty summary response", goerr.V("model", c.model))
	}
	return line, nil
}
