package brand

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
)

type stubIdentityGen struct {
	identityErr error
	imageCalls  int
}

func (s *stubIdentityGen) ProposeIdentity(ctx context.Context, req *gen.IdentityRequest) (*model.BrandKit, error) {
	if s.identityErr != nil {
		return nil, s.identityErr
	}
	return &model.BrandKit{
		Concept: "analyzed concept for " + req.Name,
		Tone:    []string{"sleek"},
		Palette: model.Palette{
			Primary: "#111111", Secondary: "#222222", Accent: "#FF0055",
			NeutralLight: "#FAFAFA", NeutralDark: "#0A0A0A",
		},
		Typography: model.Typography{Display: "Sora", Body: "Inter", Mono: "Fira Code"},
	}, nil
}

func (s *stubIdentityGen) SynthesizeImage(ctx context.Context, prompt, colorCtx, dims string) string {
	s.imageCalls++
	return fmt.Sprintf("https://cdn.example.com/gen-%d.png", s.imageCalls)
}

func newFixture(t *testing.T, identityErr error) (*Manager, *orchestrator.Orchestrator, *store.Memory, *stubIdentityGen) {
	t.Helper()
	mem := store.NewMemory()
	g := &stubIdentityGen{identityErr: identityErr}
	m := NewManager(mem, g, logger.NewNop())

	o := orchestrator.New("user-1", nil, mem, nil, 1, logger.NewNop())
	require.NoError(t, o.Init(context.Background()))
	return m, o, mem, g
}

func TestSaveConfiguredBrandPersists(t *testing.T) {
	m, o, mem, _ := newFixture(t, nil)

	saved, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{
		Name: "Acme",
		Kit:  &model.BrandKit{Concept: "outdoor gear"},
	})
	require.NoError(t, err)
	assert.Nil(t, flow)
	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)

	listed, err := mem.Brands().List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, saved.ID, o.ActiveBrandID())
}

func TestSaveNewBrandRoutesToOnboarding(t *testing.T) {
	m, o, mem, _ := newFixture(t, nil)

	saved, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{Name: "Fresh"})
	assert.ErrorIs(t, err, ErrOnboardingRequired)
	assert.Nil(t, saved)
	require.NotNil(t, flow)
	assert.Equal(t, StepUploads, flow.Step)

	// Persistence is deferred until the flow completes.
	listed, err := mem.Brands().List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestIDMigrationConservesAssetsAndMessages(t *testing.T) {
	m, o, mem, _ := newFixture(t, nil)

	// Campaign state keyed by a client-generated placeholder id.
	const placeholder = "local-12345"
	o.UpsertBrand(model.Brand{ID: placeholder, UserID: "user-1", Name: "Acme",
		Kit: &model.BrandKit{Concept: "gear"}}, true)
	for i := 0; i < 3; i++ {
		_, err := mem.Assets().Save(context.Background(), "user-1", &model.DesignAsset{
			BrandID: placeholder, GroupID: "grp-1", Name: fmt.Sprintf("asset %d", i),
			Type: model.AssetTypeImage, ImageURL: "https://cdn.example.com/a.png",
		})
		require.NoError(t, err)
	}
	assets, err := mem.Assets().List(context.Background(), "user-1")
	require.NoError(t, err)
	o.AddAssets(assets)

	saved, _, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{
		ID: placeholder, Name: "Acme", Kit: &model.BrandKit{Concept: "gear"},
	})
	require.NoError(t, err)
	require.NotEqual(t, placeholder, saved.ID)

	// Zero loss, zero duplication in both the store and live state.
	stored, err := mem.Assets().List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, a := range stored {
		assert.Equal(t, saved.ID, a.BrandID)
	}
	live := o.Assets()
	require.Len(t, live, 3)
	for _, a := range live {
		assert.Equal(t, saved.ID, a.BrandID)
	}
	assert.Equal(t, saved.ID, o.ActiveBrandID())

	brands := o.Brands()
	require.Len(t, brands, 1)
	assert.Equal(t, saved.ID, brands[0].ID)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, o, _, _ := newFixture(t, nil)
	err := m.Delete(context.Background(), o, "b-1", false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
}

func TestDeleteCascadesAndFallsBack(t *testing.T) {
	m, o, mem, _ := newFixture(t, nil)

	first, _, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{
		Name: "First", Kit: &model.BrandKit{Concept: "one"}})
	require.NoError(t, err)
	second, _, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{
		Name: "Second", Kit: &model.BrandKit{Concept: "two"}})
	require.NoError(t, err)

	_, err = mem.Assets().Save(context.Background(), "user-1", &model.DesignAsset{
		BrandID: second.ID, GroupID: "g", Name: "doomed", Type: model.AssetTypeImage})
	require.NoError(t, err)

	require.True(t, o.SetActiveBrand(second.ID))
	require.NoError(t, m.Delete(context.Background(), o, second.ID, true))

	assert.Equal(t, first.ID, o.ActiveBrandID())
	stored, err := mem.Assets().List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Len(t, o.Brands(), 1)
}

func TestOnboardingFullFlow(t *testing.T) {
	m, o, mem, g := newFixture(t, nil)

	_, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{Name: "Nimbus"})
	require.ErrorIs(t, err, ErrOnboardingRequired)

	ctx := context.Background()
	f, err := m.Advance(ctx, flow.ID, &AdvanceRequest{LogoURL: "https://cdn.example.com/logo.png"})
	require.NoError(t, err)
	assert.Equal(t, StepPresence, f.Step)

	f, err = m.Advance(ctx, flow.ID, &AdvanceRequest{Website: "https://nimbus.io", Socials: []string{"@nimbus"}})
	require.NoError(t, err)
	assert.Equal(t, StepCompetitors, f.Step)

	f, err = m.Advance(ctx, flow.ID, &AdvanceRequest{Competitors: []model.Competitor{{Name: "Cumulus", URL: "https://cumulus.io"}}})
	require.NoError(t, err)
	assert.Equal(t, StepAnalysis, f.Step)

	f, err = m.Advance(ctx, flow.ID, &AdvanceRequest{})
	require.NoError(t, err)
	assert.Equal(t, StepApproval, f.Step)
	require.NotNil(t, f.Proposal)
	assert.False(t, f.GenericProposal)
	assert.Equal(t, "analyzed concept for Nimbus", f.Proposal.Concept)
	// The uploaded logo survives the proposal.
	assert.Equal(t, "https://cdn.example.com/logo.png", f.Proposal.LogoURL)

	f, err = m.Advance(ctx, flow.ID, &AdvanceRequest{})
	require.NoError(t, err)
	assert.Equal(t, StepCreation, f.Step)

	saved, err := m.Finalize(ctx, o, flow.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.Kit)
	assert.Equal(t, "https://cdn.example.com/logo.png", saved.Kit.LogoURL)

	// Starter social assets were generated and persisted; no logo was
	// generated because one was uploaded.
	assert.Equal(t, 2, g.imageCalls)
	stored, err := mem.Assets().List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Len(t, o.Assets(), 2)

	_, err = m.Flow(flow.ID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestOnboardingAnalysisFailureFallsBackToGenericStrategy(t *testing.T) {
	m, o, _, _ := newFixture(t, errors.New("provider down"))

	_, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{Name: "Solo"})
	require.ErrorIs(t, err, ErrOnboardingRequired)

	ctx := context.Background()
	for _, req := range []*AdvanceRequest{{}, {}, {}} {
		_, err = m.Advance(ctx, flow.ID, req)
		require.NoError(t, err)
	}
	f, err := m.Advance(ctx, flow.ID, &AdvanceRequest{})
	require.NoError(t, err)

	assert.Equal(t, StepApproval, f.Step)
	require.NotNil(t, f.Proposal)
	assert.True(t, f.GenericProposal)
	assert.NotEmpty(t, f.Proposal.Concept)
	assert.NotEmpty(t, f.Proposal.Palette.Primary)
	assert.NotEmpty(t, f.Proposal.Typography.Display)
}

func TestOnboardingLoopBack(t *testing.T) {
	m, o, _, _ := newFixture(t, nil)

	_, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{Name: "Loop"})
	require.ErrorIs(t, err, ErrOnboardingRequired)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err = m.Advance(ctx, flow.ID, &AdvanceRequest{})
		require.NoError(t, err)
	}
	f, err := m.Flow(flow.ID)
	require.NoError(t, err)
	require.Equal(t, StepApproval, f.Step)

	f, err = m.Back(flow.ID)
	require.NoError(t, err)
	assert.Equal(t, StepCompetitors, f.Step)
	assert.Nil(t, f.Proposal)
}

func TestOnboardingCompetitorCap(t *testing.T) {
	m, o, _, _ := newFixture(t, nil)

	_, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{Name: "Crowded"})
	require.ErrorIs(t, err, ErrOnboardingRequired)

	ctx := context.Background()
	_, err = m.Advance(ctx, flow.ID, &AdvanceRequest{})
	require.NoError(t, err)
	_, err = m.Advance(ctx, flow.ID, &AdvanceRequest{})
	require.NoError(t, err)

	six := make([]model.Competitor, 6)
	for i := range six {
		six[i] = model.Competitor{Name: fmt.Sprintf("c%d", i)}
	}
	_, err = m.Advance(ctx, flow.ID, &AdvanceRequest{Competitors: six})
	assert.ErrorIs(t, err, ErrTooManyCompetitors)
}

func TestOnboardingSkipStillProducesUsableBrand(t *testing.T) {
	m, o, mem, g := newFixture(t, nil)

	_, flow, err := m.Save(context.Background(), o, "user-1", &model.SaveBrandRequest{Name: "Hasty"})
	require.ErrorIs(t, err, ErrOnboardingRequired)

	saved, err := m.Skip(context.Background(), o, flow.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.Kit)
	assert.False(t, saved.IsNew())
	assert.NotEmpty(t, saved.Kit.Palette.Primary)
	// No logo was uploaded, so one is generated plus the starter set.
	assert.Equal(t, 3, g.imageCalls)
	assert.NotEmpty(t, saved.Kit.LogoURL)

	listed, err := mem.Brands().List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
