package gen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/model"
)

const openaiChatModel = "gpt-4o"

// OpenAIClient is the alternate generation provider. Chat, identity, and
// image synthesis are covered; video and audio synthesis are absent and
// resolve to the capability's empty result.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Converse runs a chat completion with brand context as the system message.
func (c *OpenAIClient) Converse(ctx context.Context, req *ConverseRequest) (*ConverseResponse, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: converseSystemPrompt(req.BrandContext, req.Locale)},
	}
	for _, msg := range req.History {
		if msg.Content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if msg.Role == model.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserText})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    openaiChatModel,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion returned")
	}

	// No retrieval capability here, so no citations to surface.
	return &ConverseResponse{Text: resp.Choices[0].Message.Content}, nil
}

// ProposeIdentity requests a JSON-mode identity proposal.
func (c *OpenAIClient) ProposeIdentity(ctx context.Context, req *IdentityRequest) (*model.BrandKit, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openaiChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: identitySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: identityUserPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI identity proposal failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion returned")
	}

	var kit model.BrandKit
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)), &kit); err != nil {
		return nil, fmt.Errorf("identity proposal is not a valid brand kit: %w", err)
	}
	return &kit, nil
}

// RunSpecialist produces asset descriptors for a brief.
func (c *OpenAIClient) RunSpecialist(ctx context.Context, b *brief.Brief, brandContext string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openaiChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: specialistSystemPrompt(b.SpecialistType)},
			{Role: openai.ChatMessageRoleUser, Content: specialistUserPrompt(b, brandContext)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI specialist failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// SynthesizeImage generates one image via DALL-E.
func (c *OpenAIClient) SynthesizeImage(ctx context.Context, prompt, brandColorContext string) (*ImageData, error) {
	full := prompt
	if brandColorContext != "" {
		full = prompt + " " + brandColorContext
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE3,
		Prompt:         full,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI image synthesis failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no image returned")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return &ImageData{Bytes: data, MIME: "image/png"}, nil
}

// SynthesizeVideo is not available on this provider; the empty result is
// the capability's safe default.
func (c *OpenAIClient) SynthesizeVideo(ctx context.Context, prompt string) (*VideoData, error) {
	return nil, nil
}

// ExtendVideo is not available on this provider.
func (c *OpenAIClient) ExtendVideo(ctx context.Context, continuation json.RawMessage, prompt string) (*VideoData, error) {
	return nil, nil
}

// SynthesizeAudio is not available on this provider.
func (c *OpenAIClient) SynthesizeAudio(ctx context.Context, text string) (*AudioData, error) {
	return nil, nil
}
