// Package brand manages the brand identity lifecycle: creation, updates,
// id migration, deletion, and the guided onboarding flow.
package brand

import (
	"context"
	"errors"
	"sync"

	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
	"github.com/brandforge/creative-console/pkg/metrics"
)

var (
	// ErrConfirmationRequired gates destructive operations. No undo
	// exists, so the explicit confirmation is the sole safeguard.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrOnboardingRequired signals that the brand is new and must pass
	// through onboarding before persistence.
	ErrOnboardingRequired = errors.New("onboarding required")
)

// Generator is the slice of the generation gateway the lifecycle uses.
type Generator interface {
	ProposeIdentity(ctx context.Context, req *gen.IdentityRequest) (*model.BrandKit, error)
	SynthesizeImage(ctx context.Context, prompt, brandColorContext, dimensions string) string
}

// Manager implements brand lifecycle operations on top of the record store
// and a user's campaign state.
type Manager struct {
	store  store.Store
	gen    Generator
	logger *logger.Logger

	mu    sync.Mutex
	flows map[string]*Flow
}

// NewManager creates a brand lifecycle manager.
func NewManager(st store.Store, g Generator, log *logger.Logger) *Manager {
	return &Manager{
		store:  st,
		gen:    g,
		logger: log,
		flows:  make(map[string]*Flow),
	}
}

// Save upserts a brand. A new brand, one with no kit concept yet, is not
// persisted; it is routed into onboarding and the started flow is returned
// alongside ErrOnboardingRequired. When persistence replaces a placeholder
// id, every asset and message keyed by the old id migrates to the new one.
func (m *Manager) Save(ctx context.Context, o *orchestrator.Orchestrator, userID string, req *model.SaveBrandRequest) (*model.Brand, *Flow, error) {
	draft := model.Brand{
		ID:              req.ID,
		UserID:          userID,
		Name:            req.Name,
		Website:         req.Website,
		Socials:         req.Socials,
		Competitors:     req.Competitors,
		ReferenceImages: req.ReferenceImages,
		Kit:             req.Kit,
	}

	if draft.IsNew() {
		flow := m.startFlow(userID, draft)
		return nil, flow, ErrOnboardingRequired
	}

	saved, err := m.persist(ctx, o, userID, &draft)
	if err != nil {
		return nil, nil, err
	}
	return saved, nil, nil
}

// persist writes the brand and reconciles campaign state, including the
// id migration when the store assigns a fresh identifier.
func (m *Manager) persist(ctx context.Context, o *orchestrator.Orchestrator, userID string, draft *model.Brand) (*model.Brand, error) {
	oldID := draft.ID
	isInsert := oldID == "" || len(oldID) > 6 && oldID[:6] == "local-"

	saved, err := m.store.Brands().Save(ctx, userID, draft)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("brand", "save").Inc()
		return nil, err
	}

	if oldID != "" && oldID != saved.ID {
		// Logically atomic id migration: the store reassigns asset
		// ownership, then state re-keys assets, messages, and the active
		// selection in one step under the orchestrator lock.
		if err := m.store.Assets().ReassignBrand(ctx, oldID, saved.ID); err != nil {
			metrics.StoreErrors.WithLabelValues("asset", "reassign").Inc()
			return nil, err
		}
		o.MigrateBrandID(oldID, saved.ID)
		m.logger.Info("brand id migrated", "old_id", oldID, "new_id", saved.ID)
	}

	o.UpsertBrand(*saved, isInsert)
	if isInsert {
		metrics.BrandsTotal.WithLabelValues("manual").Inc()
	}
	return saved, nil
}

// Delete removes a brand, cascading to its assets and history. The caller
// must have confirmed; when the deleted brand was active, the selection
// falls back to the first remaining brand or to none.
func (m *Manager) Delete(ctx context.Context, o *orchestrator.Orchestrator, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := m.store.Assets().DeleteByBrand(ctx, id); err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "delete_by_brand").Inc()
		return err
	}
	if err := m.store.Brands().Delete(ctx, id); err != nil {
		metrics.StoreErrors.WithLabelValues("brand", "delete").Inc()
		return err
	}

	o.RemoveBrand(id)
	m.logger.Info("brand deleted", "brand_id", id)
	return nil
}
