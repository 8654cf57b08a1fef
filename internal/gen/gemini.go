package gen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/model"
)

const (
	geminiChatModel  = "gemini-2.5-flash"
	geminiImageModel = "imagen-4.0-generate-001"
	geminiVideoModel = "veo-3.0-generate-001"
	geminiTTSModel   = "gemini-2.5-flash-preview-tts"
)

// GeminiClient is the Gemini generation client, covering all gateway
// capabilities.
type GeminiClient struct {
	client       *genai.Client
	pollAttempts int
	pollInterval time.Duration
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string, videoPollAttempts int, videoPollInterval time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if videoPollAttempts <= 0 {
		videoPollAttempts = 30
	}
	if videoPollInterval <= 0 {
		videoPollInterval = 10 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:       client,
		pollAttempts: videoPollAttempts,
		pollInterval: videoPollInterval,
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Converse runs a grounded chat completion with brand context injected as
// the system instruction.
func (c *GeminiClient) Converse(ctx context.Context, req *ConverseRequest) (*ConverseResponse, error) {
	contents := historyContents(req.History)

	parts := []*genai.Part{genai.NewPartFromText(req.UserText)}
	if data, mime, ok := decodeDataURL(req.ImageRef); ok {
		parts = append(parts, genai.NewPartFromBytes(data, mime))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(converseSystemPrompt(req.BrandContext, req.Locale), genai.RoleUser),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, geminiChatModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini chat failed: %w", err)
	}

	return &ConverseResponse{
		Text:      resp.Text(),
		Citations: extractCitations(resp),
	}, nil
}

// ProposeIdentity requests a JSON identity proposal conforming to the
// BrandKit shape. Parse failures surface as errors rather than a degraded
// kit.
func (c *GeminiClient) ProposeIdentity(ctx context.Context, req *IdentityRequest) (*model.BrandKit, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(identitySystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	contents := []*genai.Content{
		genai.NewContentFromText(identityUserPrompt(req), genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, geminiChatModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini identity proposal failed: %w", err)
	}

	var kit model.BrandKit
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text())), &kit); err != nil {
		return nil, fmt.Errorf("identity proposal is not a valid brand kit: %w", err)
	}
	return &kit, nil
}

// RunSpecialist produces asset descriptors for a brief.
func (c *GeminiClient) RunSpecialist(ctx context.Context, b *brief.Brief, brandContext string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(specialistSystemPrompt(b.SpecialistType), genai.RoleUser),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(specialistUserPrompt(b, brandContext), genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, geminiChatModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini specialist failed: %w", err)
	}
	return resp.Text(), nil
}

// SynthesizeImage generates one image for the prompt.
func (c *GeminiClient) SynthesizeImage(ctx context.Context, prompt, brandColorContext string) (*ImageData, error) {
	full := prompt
	if brandColorContext != "" {
		full = prompt + " " + brandColorContext
	}

	resp, err := c.client.Models.GenerateImages(ctx, geminiImageModel, full, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini image synthesis failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, errors.New("no image returned")
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &ImageData{Bytes: img.ImageBytes, MIME: mime}, nil
}

// videoContinuation is the opaque metadata carried on video assets.
type videoContinuation struct {
	Operation string `json:"operation"`
	URI       string `json:"uri,omitempty"`
}

// SynthesizeVideo starts a Veo operation and polls it to completion, up to
// the configured attempt ceiling. Exhaustion returns (nil, nil), not an
// error.
func (c *GeminiClient) SynthesizeVideo(ctx context.Context, prompt string) (*VideoData, error) {
	op, err := c.client.Models.GenerateVideos(ctx, geminiVideoModel, prompt, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini video synthesis failed: %w", err)
	}
	return c.pollVideo(ctx, op)
}

// ExtendVideo issues a continuation of a prior synthesis. The prior video
// reference rides along in the prompt; the operation itself is a fresh
// synthesis request.
func (c *GeminiClient) ExtendVideo(ctx context.Context, continuation json.RawMessage, prompt string) (*VideoData, error) {
	var prior videoContinuation
	if err := json.Unmarshal(continuation, &prior); err != nil {
		return nil, fmt.Errorf("invalid video continuation metadata: %w", err)
	}

	full := prompt
	if prior.URI != "" {
		full = "Continue the scene of the video at " + prior.URI + ". " + prompt
	}

	op, err := c.client.Models.GenerateVideos(ctx, geminiVideoModel, full, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini video extension failed: %w", err)
	}
	return c.pollVideo(ctx, op)
}

func (c *GeminiClient) pollVideo(ctx context.Context, op *genai.GenerateVideosOperation) (*VideoData, error) {
	var err error
	for i := 0; i < c.pollAttempts && !op.Done; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		op, err = c.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("Gemini video poll failed: %w", err)
		}
	}

	if !op.Done {
		// Bounded poll exhausted; the caller treats this as a
		// non-fatal empty result.
		return nil, nil
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, errors.New("video operation completed without output")
	}

	vid := op.Response.GeneratedVideos[0].Video
	cont, _ := json.Marshal(videoContinuation{Operation: op.Name, URI: vid.URI})

	mime := vid.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	return &VideoData{
		Bytes:        vid.VideoBytes,
		MIME:         mime,
		URI:          vid.URI,
		Continuation: cont,
	}, nil
}

// SynthesizeAudio converts text to a self-contained WAV resource. The TTS
// model returns raw PCM, so the payload is wrapped in a RIFF container.
func (c *GeminiClient) SynthesizeAudio(ctx context.Context, text string) (*AudioData, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: "Kore"},
			},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, geminiTTSModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini audio synthesis failed: %w", err)
	}

	pcm := inlineAudio(resp)
	if len(pcm) == 0 {
		return nil, errors.New("no audio returned")
	}

	return &AudioData{Bytes: wavFromPCM(pcm, 24000, 1, 16), MIME: "audio/wav"}, nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}

func extractCitations(resp *genai.GenerateContentResponse) []model.Citation {
	var citations []model.Citation
	for _, cand := range resp.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				citations = append(citations, model.Citation{
					Title: chunk.Web.Title,
					URI:   chunk.Web.URI,
				})
			}
		}
	}
	return citations
}

func historyContents(history []model.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		if msg.Content == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

// decodeDataURL returns the payload of a base64 data URL, or ok=false for
// anything else.
func decodeDataURL(ref string) (data []byte, mime string, ok bool) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, "", false
	}
	rest := strings.TrimPrefix(ref, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return nil, "", false
	}
	return decoded, rest[:sep], true
}
