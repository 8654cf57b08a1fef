package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandforge/creative-console/internal/middleware"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
)

// AssetHandler handles asset and folder endpoints.
type AssetHandler struct {
	registry *orchestrator.Registry
	logger   *logger.Logger
}

// NewAssetHandler creates a new asset handler.
func NewAssetHandler(registry *orchestrator.Registry, log *logger.Logger) *AssetHandler {
	return &AssetHandler{registry: registry, logger: log}
}

func (h *AssetHandler) orchestrator(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, bool) {
	o, err := h.registry.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("campaign state load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load campaign state")
		return nil, false
	}
	return o, true
}

// List handles GET /api/v1/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	assets := o.Assets()
	if brandID := r.URL.Query().Get("brand_id"); brandID != "" {
		filtered := assets[:0]
		for _, a := range assets {
			if a.BrandID == brandID {
				filtered = append(filtered, a)
			}
		}
		assets = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

// Update handles PUT /api/v1/assets/{id}
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var req model.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := o.UpdateAsset(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// SetStatus handles POST /api/v1/assets/{id}/status
func (h *AssetHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var req model.AssetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case model.AssetStatusPending, model.AssetStatusApproved, model.AssetStatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	saved, err := o.SetAssetStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// SetPerformance handles POST /api/v1/assets/{id}/performance
func (h *AssetHandler) SetPerformance(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var req model.PerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	perf := model.Performance{Engagement: req.Engagement, Feedback: req.Feedback}
	if err := o.SetAssetPerformance(r.Context(), id, perf); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "performance": perf})
}

// Delete handles DELETE /api/v1/assets/{id}?confirm=true
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	if !confirmed(r) {
		writeError(w, http.StatusPreconditionRequired, "confirmation required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := o.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ExtendVideo handles POST /api/v1/assets/{id}/extend-video
func (h *AssetHandler) ExtendVideo(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var req struct {
		Prompt string `json:"prompt,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	extended, err := o.ExtendVideoAsset(r.Context(), id, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "asset not found")
		case errors.Is(err, orchestrator.ErrNotVideo):
			writeError(w, http.StatusBadRequest, "asset is not a video")
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, extended)
}

// RenameFolder handles PUT /api/v1/folders/{id}
func (h *AssetHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	groupID := chi.URLParam(r, "id")
	var req model.RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := o.RenameGroup(r.Context(), groupID, req.Title); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"group_id": groupID, "title": req.Title})
}

// DeleteFolder handles DELETE /api/v1/folders/{id}?confirm=true
func (h *AssetHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	if !confirmed(r) {
		writeError(w, http.StatusPreconditionRequired, "confirmation required")
		return
	}

	groupID := chi.URLParam(r, "id")
	if err := o.DeleteGroup(r.Context(), groupID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": groupID})
}
