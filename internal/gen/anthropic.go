package gen

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/brandforge/creative-console/internal/model"
)

const anthropicChatModel = "claude-3-5-sonnet-20241022"

// AnthropicCompleter is a chat-only provider used as the Converse fallback
// when the primary provider errors.
type AnthropicCompleter struct {
	client *anthropic.Client
}

// NewAnthropicCompleter creates a new Anthropic chat completer.
func NewAnthropicCompleter(apiKey string) (*AnthropicCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	return &AnthropicCompleter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Name returns the provider name.
func (c *AnthropicCompleter) Name() string {
	return "anthropic"
}

// Complete runs one chat completion over the brand's history.
func (c *AnthropicCompleter) Complete(ctx context.Context, system string, history []model.Message, userText string) (string, error) {
	// System context rides in the first user message; the history
	// follows as alternating turns.
	messages := []anthropic.MessageParam{
		textMessage(anthropic.MessageParamRoleUser, system),
	}
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		role := anthropic.MessageParamRoleUser
		if msg.Role == model.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		messages = append(messages, textMessage(role, msg.Content))
	}
	messages = append(messages, textMessage(anthropic.MessageParamRoleUser, userText))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropicChatModel),
		MaxTokens: anthropic.F(int64(4096)),
		Messages:  anthropic.F(messages),
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic chat failed: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}
	return content, nil
}

func textMessage(role anthropic.MessageParamRole, text string) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role: anthropic.F(role),
		Content: anthropic.F([]anthropic.ContentBlockParamUnion{
			anthropic.TextBlockParam{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(text),
			},
		}),
	}
}
