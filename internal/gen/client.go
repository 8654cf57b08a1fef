// Package gen provides a uniform gateway over heterogeneous generation
// capabilities: conversational completion, structured identity proposal,
// specialist asset planning, and image/video/audio synthesis.
package gen

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/model"
)

// ConverseRequest is the input for a strategic chat completion.
type ConverseRequest struct {
	UserText     string
	ImageRef     string
	History      []model.Message
	BrandContext string
	Locale       string
}

// ConverseResponse is the chat completion with any grounding citations.
type ConverseResponse struct {
	Text      string
	Citations []model.Citation
}

// IdentityRequest is the input for a structured brand identity proposal.
type IdentityRequest struct {
	Name            string
	Website         string
	Socials         []string
	ReferenceImages []string
	Competitors     []model.Competitor
}

// ImageData is raw synthesized image bytes.
type ImageData struct {
	Bytes []byte
	MIME  string
}

// VideoData is a synthesized video plus opaque continuation metadata that
// enables a later extension request.
type VideoData struct {
	Bytes        []byte
	MIME         string
	URI          string
	Continuation json.RawMessage
}

// AudioData is a self-contained playable audio resource.
type AudioData struct {
	Bytes []byte
	MIME  string
}

// Client is the interface for generation providers. Synthesis methods may
// return (nil, nil) when the capability completed without output (e.g. a
// bounded video poll that timed out); the Gateway layers the safe-default
// policy on top.
type Client interface {
	Converse(ctx context.Context, req *ConverseRequest) (*ConverseResponse, error)
	ProposeIdentity(ctx context.Context, req *IdentityRequest) (*model.BrandKit, error)
	RunSpecialist(ctx context.Context, b *brief.Brief, brandContext string) (string, error)
	SynthesizeImage(ctx context.Context, prompt, brandColorContext string) (*ImageData, error)
	SynthesizeVideo(ctx context.Context, prompt string) (*VideoData, error)
	SynthesizeAudio(ctx context.Context, text string) (*AudioData, error)
	ExtendVideo(ctx context.Context, continuation json.RawMessage, prompt string) (*VideoData, error)

	// Name returns the provider name.
	Name() string
}

// Completer is a chat-only provider used as a fallback when the primary
// Converse call errors.
type Completer interface {
	Complete(ctx context.Context, system string, history []model.Message, userText string) (string, error)
	Name() string
}

// Provider is the type of generation provider.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// NewClient creates a generation client for the named provider.
func NewClient(ctx context.Context, provider Provider, apiKey string, videoPollAttempts int, videoPollInterval time.Duration) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewGeminiClient(ctx, apiKey, videoPollAttempts, videoPollInterval)
	}
}
