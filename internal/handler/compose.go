package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/creative-console/internal/blob"
	"github.com/brandforge/creative-console/internal/compose"
	"github.com/brandforge/creative-console/pkg/logger"
)

// ComposeHandler handles the logo composition endpoint.
type ComposeHandler struct {
	sink   blob.Sink
	client *http.Client
	logger *logger.Logger
}

// NewComposeHandler creates a new compose handler.
func NewComposeHandler(sink blob.Sink, log *logger.Logger) *ComposeHandler {
	return &ComposeHandler{
		sink:   sink,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: log,
	}
}

// ComposeLogoRequest is the request for POST /api/v1/compose/logo.
type ComposeLogoRequest struct {
	BaseURL string  `json:"base_url"`
	LogoURL string  `json:"logo_url"`
	Anchor  string  `json:"anchor,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Padding int     `json:"padding,omitempty"`
}

// ComposeLogo handles POST /api/v1/compose/logo: fetches both images,
// overlays the logo, and stores the flattened result.
func (h *ComposeHandler) ComposeLogo(w http.ResponseWriter, r *http.Request) {
	var req ComposeLogoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BaseURL == "" || req.LogoURL == "" {
		writeError(w, http.StatusBadRequest, "base_url and logo_url are required")
		return
	}

	if req.Anchor == "" {
		req.Anchor = string(compose.AnchorBottomRight)
	}
	if req.Scale == 0 {
		req.Scale = 0.2
	}
	if req.Opacity == 0 {
		req.Opacity = 1
	}

	base, err := h.fetchImage(r.Context(), req.BaseURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("failed to load base image: %v", err))
		return
	}
	logo, err := h.fetchImage(r.Context(), req.LogoURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("failed to load logo image: %v", err))
		return
	}

	out, err := compose.Overlay(base, logo, compose.Options{
		Anchor:  compose.Anchor(req.Anchor),
		Scale:   req.Scale,
		Opacity: req.Opacity,
		Padding: req.Padding,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode composed image")
		return
	}

	key := "composed/" + uuid.Must(uuid.NewV7()).String() + ".png"
	url, err := h.sink.Put(r.Context(), key, buf.Bytes(), "image/png")
	if err != nil {
		h.logger.Error("composed image upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store composed image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *ComposeHandler) fetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	return img, err
}
