package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/creative-console/internal/blob"
	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/pkg/logger"
	"github.com/brandforge/creative-console/pkg/metrics"
)

// Gateway wraps a generation client with the capability-specific failure
// policy: image failures resolve to a deterministic placeholder, video and
// audio failures resolve to an empty result, chat retries once on the
// fallback completer, and identity proposals propagate errors because no
// safe default exists for a full brand kit.
type Gateway struct {
	primary      Client
	chatFallback Completer
	sink         blob.Sink
	logger       *logger.Logger
}

// NewGateway creates a gateway. chatFallback may be nil.
func NewGateway(primary Client, chatFallback Completer, sink blob.Sink, log *logger.Logger) *Gateway {
	if sink == nil {
		sink = blob.DataURLSink{}
	}
	return &Gateway{
		primary:      primary,
		chatFallback: chatFallback,
		sink:         sink,
		logger:       log,
	}
}

// Converse produces the orchestrator's natural-language response with any
// embedded directives and grounding citations.
func (g *Gateway) Converse(ctx context.Context, req *ConverseRequest) (*ConverseResponse, error) {
	start := time.Now()
	resp, err := g.primary.Converse(ctx, req)
	if err == nil {
		metrics.RecordGeneration("converse", "success", time.Since(start).Seconds())
		return resp, nil
	}

	metrics.RecordGeneration("converse", "error", time.Since(start).Seconds())
	if g.chatFallback == nil {
		return nil, fmt.Errorf("converse failed: %w", err)
	}

	g.logger.Warn("primary converse failed, retrying on fallback provider",
		"provider", g.primary.Name(), "fallback", g.chatFallback.Name(), "error", err)

	text, ferr := g.chatFallback.Complete(ctx, converseSystemPrompt(req.BrandContext, req.Locale), req.History, req.UserText)
	if ferr != nil {
		return nil, fmt.Errorf("converse failed on both providers: %w", err)
	}
	metrics.GenerationFallbacks.WithLabelValues("converse").Inc()
	return &ConverseResponse{Text: text}, nil
}

// ProposeIdentity returns a structured identity proposal. Failures propagate
// so the caller can render an explicit error.
func (g *Gateway) ProposeIdentity(ctx context.Context, req *IdentityRequest) (*model.BrandKit, error) {
	start := time.Now()
	kit, err := g.primary.ProposeIdentity(ctx, req)
	if err != nil {
		metrics.RecordGeneration("identity", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("identity proposal failed: %w", err)
	}
	if err := validateKit(kit); err != nil {
		metrics.RecordGeneration("identity", "error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordGeneration("identity", "success", time.Since(start).Seconds())
	return kit, nil
}

// RunSpecialist turns a brief into raw specialist output carrying asset
// descriptors.
func (g *Gateway) RunSpecialist(ctx context.Context, b *brief.Brief, brandContext string) (string, error) {
	start := time.Now()
	out, err := g.primary.RunSpecialist(ctx, b, brandContext)
	if err != nil {
		metrics.RecordGeneration("specialist", "error", time.Since(start).Seconds())
		return "", fmt.Errorf("specialist run failed: %w", err)
	}
	metrics.RecordGeneration("specialist", "success", time.Since(start).Seconds())
	return out, nil
}

// SynthesizeImage returns an image URL. On failure the caller's workflow
// continues with a deterministic placeholder reference.
func (g *Gateway) SynthesizeImage(ctx context.Context, prompt, brandColorContext, dimensions string) string {
	start := time.Now()
	img, err := g.primary.SynthesizeImage(ctx, prompt, brandColorContext)
	if err != nil || img == nil || len(img.Bytes) == 0 {
		metrics.RecordGeneration("image", "error", time.Since(start).Seconds())
		metrics.GenerationFallbacks.WithLabelValues("image").Inc()
		g.logger.Warn("image synthesis failed, using placeholder", "error", err)
		return PlaceholderImageURL(prompt, dimensions)
	}

	u, err := g.sink.Put(ctx, mediaKey("images", extFor(img.MIME)), img.Bytes, img.MIME)
	if err != nil {
		metrics.RecordGeneration("image", "error", time.Since(start).Seconds())
		metrics.GenerationFallbacks.WithLabelValues("image").Inc()
		g.logger.Warn("image upload failed, using placeholder", "error", err)
		return PlaceholderImageURL(prompt, dimensions)
	}

	metrics.RecordGeneration("image", "success", time.Since(start).Seconds())
	return u
}

// VideoResult is a stored video URL plus continuation metadata.
type VideoResult struct {
	URL          string
	Continuation json.RawMessage
}

// SynthesizeVideo returns a stored video or nil when synthesis failed or
// the bounded poll timed out.
func (g *Gateway) SynthesizeVideo(ctx context.Context, prompt string) *VideoResult {
	return g.storeVideo(ctx, "video", func() (*VideoData, error) {
		return g.primary.SynthesizeVideo(ctx, prompt)
	})
}

// ExtendVideo continues a prior synthesis using its opaque metadata.
func (g *Gateway) ExtendVideo(ctx context.Context, continuation json.RawMessage, prompt string) *VideoResult {
	return g.storeVideo(ctx, "video_extend", func() (*VideoData, error) {
		return g.primary.ExtendVideo(ctx, continuation, prompt)
	})
}

func (g *Gateway) storeVideo(ctx context.Context, capability string, synth func() (*VideoData, error)) *VideoResult {
	start := time.Now()
	vid, err := synth()
	if err != nil || vid == nil {
		metrics.RecordGeneration(capability, "error", time.Since(start).Seconds())
		if err != nil {
			g.logger.Warn("video synthesis failed", "capability", capability, "error", err)
		}
		return nil
	}

	u := vid.URI
	if len(vid.Bytes) > 0 {
		stored, err := g.sink.Put(ctx, mediaKey("videos", extFor(vid.MIME)), vid.Bytes, vid.MIME)
		if err == nil {
			u = stored
		} else {
			g.logger.Warn("video upload failed, serving provider URI", "error", err)
		}
	}
	if u == "" {
		metrics.RecordGeneration(capability, "error", time.Since(start).Seconds())
		return nil
	}

	metrics.RecordGeneration(capability, "success", time.Since(start).Seconds())
	return &VideoResult{URL: u, Continuation: vid.Continuation}
}

// SynthesizeAudio returns a stored audio URL or empty on failure.
func (g *Gateway) SynthesizeAudio(ctx context.Context, text string) string {
	start := time.Now()
	audio, err := g.primary.SynthesizeAudio(ctx, text)
	if err != nil || audio == nil || len(audio.Bytes) == 0 {
		metrics.RecordGeneration("audio", "error", time.Since(start).Seconds())
		if err != nil {
			g.logger.Warn("audio synthesis failed", "error", err)
		}
		return ""
	}

	u, err := g.sink.Put(ctx, mediaKey("audio", extFor(audio.MIME)), audio.Bytes, audio.MIME)
	if err != nil {
		metrics.RecordGeneration("audio", "error", time.Since(start).Seconds())
		g.logger.Warn("audio upload failed", "error", err)
		return ""
	}

	metrics.RecordGeneration("audio", "success", time.Since(start).Seconds())
	return u
}

// PlaceholderImageURL builds the deterministic placeholder reference used
// when image synthesis fails, so downstream UI and persistence stay
// well-formed.
func PlaceholderImageURL(prompt, dimensions string) string {
	dims := dimensions
	if dims == "" || !strings.Contains(dims, "x") {
		dims = "1080x1080"
	}
	label := prompt
	if len(label) > 24 {
		label = label[:24]
	}
	if label == "" {
		label = "generating"
	}
	return fmt.Sprintf("https://placehold.co/%s/1a1a2e/f5f5f5?text=%s", dims, url.QueryEscape(label))
}

func validateKit(kit *model.BrandKit) error {
	if kit == nil || kit.Concept == "" {
		return fmt.Errorf("identity proposal missing concept")
	}
	p := kit.Palette
	if p.Primary == "" || p.Secondary == "" || p.Accent == "" || p.NeutralLight == "" || p.NeutralDark == "" {
		return fmt.Errorf("identity proposal missing palette slots")
	}
	t := kit.Typography
	if t.Display == "" || t.Body == "" || t.Mono == "" {
		return fmt.Errorf("identity proposal missing typography slots")
	}
	return nil
}

func mediaKey(prefix, ext string) string {
	return prefix + "/" + uuid.Must(uuid.NewV7()).String() + ext
}

func extFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "audio/wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ".png"
	}
}
