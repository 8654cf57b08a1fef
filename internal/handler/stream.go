package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brandforge/creative-console/internal/middleware"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/pkg/logger"
	"github.com/brandforge/creative-console/pkg/metrics"
)

// StreamHandler streams turn progress over SSE.
type StreamHandler struct {
	registry *orchestrator.Registry
	logger   *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(registry *orchestrator.Registry, log *logger.Logger) *StreamHandler {
	return &StreamHandler{registry: registry, logger: log}
}

// Stream handles GET /api/v1/turns/stream. Clients receive stage
// transitions, appended messages, asset attachments, and turn errors as
// they happen.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	o, err := h.registry.Get(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load campaign state")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	events, cancel := o.Subscribe()
	defer cancel()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"active_brand_id": o.ActiveBrandID(),
		"stage":           string(o.Stage()),
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected", "user_id", userID)
			return

		case ev, open := <-events:
			if !open {
				return
			}
			sendSSEEvent(w, flusher, string(ev.Kind), ev)

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", map[string]time.Time{
				"timestamp": time.Now(),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
