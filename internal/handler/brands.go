package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandforge/creative-console/internal/brand"
	"github.com/brandforge/creative-console/internal/middleware"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/pkg/logger"
)

// BrandHandler handles brand lifecycle endpoints.
type BrandHandler struct {
	registry *orchestrator.Registry
	brands   *brand.Manager
	logger   *logger.Logger
}

// NewBrandHandler creates a new brand handler.
func NewBrandHandler(registry *orchestrator.Registry, brands *brand.Manager, log *logger.Logger) *BrandHandler {
	return &BrandHandler{registry: registry, brands: brands, logger: log}
}

func (h *BrandHandler) orchestrator(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, bool) {
	o, err := h.registry.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("campaign state load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load campaign state")
		return nil, false
	}
	return o, true
}

// List handles GET /api/v1/brands
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"brands":          o.Brands(),
		"active_brand_id": o.ActiveBrandID(),
	})
}

// Save handles POST /api/v1/brands and PUT /api/v1/brands/{id}
func (h *BrandHandler) Save(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	var req model.SaveBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ID = id
	}
	if err := middleware.ValidateBrandName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(r.Context())
	saved, flow, err := h.brands.Save(r.Context(), o, userID, &req)
	if err != nil {
		if errors.Is(err, brand.ErrOnboardingRequired) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": "onboarding_required",
				"flow":  flow,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// Delete handles DELETE /api/v1/brands/{id}?confirm=true
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.brands.Delete(r.Context(), o, id, confirmed(r))
	if err != nil {
		if errors.Is(err, brand.ErrConfirmationRequired) {
			writeError(w, http.StatusPreconditionRequired, "confirmation required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"deleted":         id,
		"active_brand_id": o.ActiveBrandID(),
	})
}

// Activate handles POST /api/v1/brands/{id}/activate
func (h *BrandHandler) Activate(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if !o.SetActiveBrand(id) {
		writeError(w, http.StatusNotFound, "brand not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"active_brand_id": id})
}

// Messages handles GET /api/v1/brands/{id}/messages
func (h *BrandHandler) Messages(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.ListMessagesResponse{
		BrandID:  id,
		Messages: o.Messages(id),
	})
}
