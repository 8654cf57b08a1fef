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

// OnboardingHandler handles the guided brand onboarding flow.
type OnboardingHandler struct {
	registry *orchestrator.Registry
	brands   *brand.Manager
	logger   *logger.Logger
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(registry *orchestrator.Registry, brands *brand.Manager, log *logger.Logger) *OnboardingHandler {
	return &OnboardingHandler{registry: registry, brands: brands, logger: log}
}

func (h *OnboardingHandler) orchestrator(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, bool) {
	o, err := h.registry.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("campaign state load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load campaign state")
		return nil, false
	}
	return o, true
}

// Start handles POST /api/v1/onboarding. Starting a flow directly is
// equivalent to saving a brand that still needs onboarding.
func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	var req model.SaveBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateBrandName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Kit = nil

	userID := middleware.GetUserID(r.Context())
	_, flow, err := h.brands.Save(r.Context(), o, userID, &req)
	if err != nil && !errors.Is(err, brand.ErrOnboardingRequired) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, flow)
}

// Get handles GET /api/v1/onboarding/{id}
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	flow, err := h.brands.Flow(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "onboarding flow not found")
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// Advance handles POST /api/v1/onboarding/{id}/advance
func (h *OnboardingHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req brand.AdvanceRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	flow, err := h.brands.Advance(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, brand.ErrFlowNotFound):
			writeError(w, http.StatusNotFound, "onboarding flow not found")
		case errors.Is(err, brand.ErrTooManyCompetitors):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// Back handles POST /api/v1/onboarding/{id}/back
func (h *OnboardingHandler) Back(w http.ResponseWriter, r *http.Request) {
	flow, err := h.brands.Back(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "onboarding flow not found")
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// Finalize handles POST /api/v1/onboarding/{id}/finalize
func (h *OnboardingHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	saved, err := h.brands.Finalize(r.Context(), o, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, brand.ErrFlowNotFound) {
			writeError(w, http.StatusNotFound, "onboarding flow not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Skip handles POST /api/v1/onboarding/{id}/skip
func (h *OnboardingHandler) Skip(w http.ResponseWriter, r *http.Request) {
	o, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	saved, err := h.brands.Skip(r.Context(), o, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, brand.ErrFlowNotFound) {
			writeError(w, http.StatusNotFound, "onboarding flow not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
