package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brandforge/creative-console/internal/middleware"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/pkg/logger"
)

// TurnHandler handles conversational turn endpoints.
type TurnHandler struct {
	registry *orchestrator.Registry
	logger   *logger.Logger
}

// NewTurnHandler creates a new turn handler.
func NewTurnHandler(registry *orchestrator.Registry, log *logger.Logger) *TurnHandler {
	return &TurnHandler{registry: registry, logger: log}
}

// Submit handles POST /api/v1/turns
func (h *TurnHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.SubmitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateTurnText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.registry.Get(ctx, userID)
	if err != nil {
		h.logger.Error("campaign state load failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load campaign state")
		return
	}

	msg, err := o.SubmitTurn(ctx, &req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrNoActiveBrand) {
			writeError(w, http.StatusConflict, "no active brand selected")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msg == nil {
		// Superseded by a newer turn; nothing from this one was merged.
		writeJSON(w, http.StatusOK, map[string]bool{"superseded": true})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    msg,
		"stage":      o.Stage(),
		"last_brief": o.LastBrief(),
	})
}
