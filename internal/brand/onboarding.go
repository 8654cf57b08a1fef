package brand

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/pkg/metrics"
)

// Step is one stage of the guided onboarding flow.
type Step int

const (
	// StepUploads collects identity image uploads (logo, symbol, icon).
	StepUploads Step = iota
	// StepPresence collects digital-presence URLs and handles.
	StepPresence
	// StepCompetitors collects up to five competitor references.
	StepCompetitors
	// StepAnalysis runs the AI competitor and strategy analysis.
	StepAnalysis
	// StepApproval presents the proposal for approval or rework.
	StepApproval
	// StepCreation performs guided creation and finalizes the brand.
	StepCreation
)

const maxCompetitors = 5

var (
	// ErrFlowNotFound is returned for unknown onboarding flow ids.
	ErrFlowNotFound = errors.New("onboarding flow not found")

	// ErrTooManyCompetitors enforces the competitor list cap.
	ErrTooManyCompetitors = fmt.Errorf("at most %d competitors allowed", maxCompetitors)
)

// Flow is server-side onboarding state, keyed by flow id.
type Flow struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Step   Step   `json:"step"`

	Draft    model.Brand     `json:"draft"`
	Proposal *model.BrandKit `json:"proposal,omitempty"`

	// GenericProposal marks a proposal substituted after an analysis
	// failure; the flow continues either way.
	GenericProposal bool `json:"generic_proposal,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AdvanceRequest carries the per-step input for advancing a flow.
type AdvanceRequest struct {
	LogoURL   string `json:"logo_url,omitempty"`
	SymbolURL string `json:"symbol_url,omitempty"`
	IconURL   string `json:"icon_url,omitempty"`

	Website string   `json:"website,omitempty"`
	Socials []string `json:"socials,omitempty"`

	Competitors []model.Competitor `json:"competitors,omitempty"`
}

func (m *Manager) startFlow(userID string, draft model.Brand) *Flow {
	flow := &Flow{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Draft:     draft,
		CreatedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.flows[flow.ID] = flow
	m.mu.Unlock()
	return flow
}

// Flow returns the flow by id.
func (m *Manager) Flow(id string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

// Advance applies the request to the current step and moves the flow
// forward. Advancing past the approval step approves the proposal; the
// creation step itself completes via Finalize.
func (m *Manager) Advance(ctx context.Context, id string, req *AdvanceRequest) (*Flow, error) {
	f, err := m.Flow(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if f.Step == StepAnalysis {
		draft := f.Draft
		m.mu.Unlock()

		proposal, generic := m.analyze(ctx, &draft)

		m.mu.Lock()
		if f.Step == StepAnalysis {
			f.Proposal = proposal
			f.GenericProposal = generic
			f.Step = StepApproval
		}
		m.mu.Unlock()
		return f, nil
	}
	defer m.mu.Unlock()

	switch f.Step {
	case StepUploads:
		if req.LogoURL != "" || req.SymbolURL != "" || req.IconURL != "" {
			if f.Draft.Kit == nil {
				f.Draft.Kit = &model.BrandKit{}
			}
			f.Draft.Kit.LogoURL = req.LogoURL
			f.Draft.Kit.SymbolURL = req.SymbolURL
			f.Draft.Kit.IconURL = req.IconURL
		}
		f.Step = StepPresence

	case StepPresence:
		if req.Website != "" {
			f.Draft.Website = req.Website
		}
		if len(req.Socials) > 0 {
			f.Draft.Socials = req.Socials
		}
		f.Step = StepCompetitors

	case StepCompetitors:
		if len(req.Competitors) > maxCompetitors {
			return nil, ErrTooManyCompetitors
		}
		f.Draft.Competitors = req.Competitors
		f.Step = StepAnalysis

	case StepApproval:
		f.Step = StepCreation
	}

	return f, nil
}

// Back loops the flow from approval back to the competitor step so the
// analysis can be redone with different input.
func (m *Manager) Back(id string) (*Flow, error) {
	f, err := m.Flow(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Step == StepApproval {
		f.Step = StepCompetitors
		f.Proposal = nil
		f.GenericProposal = false
	}
	return f, nil
}

// analyze runs the identity proposal. A failure substitutes a generic but
// complete strategy so the flow never dead-ends.
func (m *Manager) analyze(ctx context.Context, draft *model.Brand) (*model.BrandKit, bool) {
	uploaded := draft.Kit

	kit, err := m.gen.ProposeIdentity(ctx, &gen.IdentityRequest{
		Name:            draft.Name,
		Website:         draft.Website,
		Socials:         draft.Socials,
		ReferenceImages: draft.ReferenceImages,
		Competitors:     draft.Competitors,
	})
	if err != nil {
		m.logger.Warn("identity analysis failed, substituting generic strategy",
			"brand", draft.Name, "error", err)
		kit = genericKit(draft.Name)
		carryUploads(kit, uploaded)
		return kit, true
	}

	carryUploads(kit, uploaded)
	return kit, false
}

// Finalize performs guided creation from the approved (or skipped-to)
// proposal: assembles the kit, generates a logo only when none was
// uploaded, generates a small starter set of social assets, and pushes the
// result through the normal save path. Every generation step is
// best-effort; failures still leave the user with a usable brand.
func (m *Manager) Finalize(ctx context.Context, o *orchestrator.Orchestrator, id string) (*model.Brand, error) {
	f, err := m.Flow(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	draft := f.Draft
	kit := f.Proposal
	m.mu.Unlock()

	if kit == nil {
		kit = genericKit(draft.Name)
		carryUploads(kit, draft.Kit)
	}

	if kit.LogoURL == "" {
		logoPrompt := fmt.Sprintf("minimal flat vector logo for %q, concept: %s", draft.Name, kit.Concept)
		kit.LogoURL = m.gen.SynthesizeImage(ctx, logoPrompt, kit.PromptContext(), "1024x1024")
	}

	draft.Kit = kit
	saved, err := m.persist(ctx, o, f.UserID, &draft)
	if err != nil {
		return nil, err
	}
	metrics.BrandsTotal.WithLabelValues("onboarding").Inc()

	starters := m.starterAssets(ctx, saved)
	persisted := make([]model.DesignAsset, 0, len(starters))
	for i := range starters {
		a, err := m.store.Assets().Save(ctx, f.UserID, &starters[i])
		if err != nil {
			metrics.StoreErrors.WithLabelValues("asset", "save").Inc()
			m.logger.Warn("starter asset persist failed", "name", starters[i].Name, "error", err)
			continue
		}
		metrics.AssetsPersisted.WithLabelValues(string(a.Type)).Inc()
		persisted = append(persisted, *a)
	}
	o.AddAssets(persisted)

	m.mu.Lock()
	delete(m.flows, id)
	m.mu.Unlock()

	return saved, nil
}

// Skip finalizes immediately from whatever the flow has gathered so far.
func (m *Manager) Skip(ctx context.Context, o *orchestrator.Orchestrator, id string) (*model.Brand, error) {
	f, err := m.Flow(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if f.Proposal == nil {
		f.Proposal = genericKit(f.Draft.Name)
		carryUploads(f.Proposal, f.Draft.Kit)
		f.GenericProposal = true
	}
	m.mu.Unlock()
	return m.Finalize(ctx, o, id)
}

// starterAssets builds the initial small social set generated at the end
// of onboarding.
func (m *Manager) starterAssets(ctx context.Context, b *model.Brand) []model.DesignAsset {
	groupID := fmt.Sprintf("grp-%d", time.Now().UnixMilli())
	colorCtx := b.Kit.PromptContext()
	prompts := []struct{ name, prompt string }{
		{"Welcome post", fmt.Sprintf("announcement social post introducing %s", b.Name)},
		{"Brand story", fmt.Sprintf("lifestyle social post expressing: %s", b.Kit.Concept)},
	}

	assets := make([]model.DesignAsset, 0, len(prompts))
	for _, p := range prompts {
		assets = append(assets, model.DesignAsset{
			BrandID:    b.ID,
			GroupID:    groupID,
			GroupTitle: "Getting started",
			Name:       p.name,
			Type:       model.AssetTypeSocial,
			Dimensions: "1080x1080",
			Prompt:     p.prompt,
			ImageURL:   m.gen.SynthesizeImage(ctx, p.prompt, colorCtx, "1080x1080"),
			Status:     model.AssetStatusPending,
		})
	}
	return assets
}

// genericKit is the complete fallback strategy used when analysis fails or
// onboarding is skipped.
func genericKit(name string) *model.BrandKit {
	return &model.BrandKit{
		Concept: fmt.Sprintf("%s: a modern brand with a clean, confident visual identity", name),
		Tone:    []string{"modern", "clean", "confident"},
		Palette: model.Palette{
			Primary:      "#1A1A2E",
			Secondary:    "#16213E",
			Accent:       "#E94560",
			NeutralLight: "#F5F5F5",
			NeutralDark:  "#0F0F1A",
		},
		Typography: model.Typography{
			Display: "Inter",
			Body:    "Inter",
			Mono:    "JetBrains Mono",
		},
	}
}

// carryUploads keeps user-uploaded identity images over generated ones.
func carryUploads(kit *model.BrandKit, uploaded *model.BrandKit) {
	if kit == nil || uploaded == nil {
		return
	}
	if uploaded.LogoURL != "" {
		kit.LogoURL = uploaded.LogoURL
	}
	if uploaded.SymbolURL != "" {
		kit.SymbolURL = uploaded.SymbolURL
	}
	if uploaded.IconURL != "" {
		kit.IconURL = uploaded.IconURL
	}
}
