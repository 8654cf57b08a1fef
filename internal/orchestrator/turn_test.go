package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
)

type stubGen struct {
	mu            sync.Mutex
	converseFn    func(*gen.ConverseRequest) (*gen.ConverseResponse, error)
	specialistOut string
	imageCalls    int
	videoCalls    int
	audioCalls    int
}

func (s *stubGen) Converse(ctx context.Context, req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
	if s.converseFn != nil {
		return s.converseFn(req)
	}
	return &gen.ConverseResponse{Text: "sounds good"}, nil
}

func (s *stubGen) RunSpecialist(ctx context.Context, b *brief.Brief, brandContext string) (string, error) {
	return s.specialistOut, nil
}

func (s *stubGen) SynthesizeImage(ctx context.Context, prompt, colorCtx, dims string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageCalls++
	return fmt.Sprintf("https://cdn.example.com/img-%d.png", s.imageCalls)
}

func (s *stubGen) SynthesizeVideo(ctx context.Context, prompt string) *gen.VideoResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoCalls++
	return &gen.VideoResult{URL: "https://cdn.example.com/clip.mp4", Continuation: json.RawMessage(`{"operation":"op-1"}`)}
}

func (s *stubGen) ExtendVideo(ctx context.Context, cont json.RawMessage, prompt string) *gen.VideoResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoCalls++
	return &gen.VideoResult{URL: "https://cdn.example.com/clip-ext.mp4", Continuation: cont}
}

func (s *stubGen) SynthesizeAudio(ctx context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioCalls++
	return "https://cdn.example.com/track.wav"
}

func (s *stubGen) images() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageCalls
}

func briefResponse(specialist, objective string) string {
	return "Here is the plan.\n```json-brief\n" +
		fmt.Sprintf(`{"specialist_type":%q,"objective":%q,"quantity":1}`, specialist, objective) +
		"\n```"
}

func assetsBlock(descriptors ...string) string {
	return "```json-assets\n[" + joinComma(descriptors) + "]\n```"
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func descriptor(name string) string {
	return typedDescriptor(name, "image")
}

func typedDescriptor(name, typ string) string {
	return fmt.Sprintf(`{"name":%q,"type":%q,"dimensions":"1080x1080","prompt":"a %s shot","copy":"Buy now"}`, name, typ, name)
}

func newTestOrchestrator(t *testing.T, g Generator, quantity int) (*Orchestrator, *store.Memory, string) {
	t.Helper()
	mem := store.NewMemory()
	saved, err := mem.Brands().Save(context.Background(), "user-1", &model.Brand{
		Name: "Acme",
		Kit:  &model.BrandKit{Concept: "bold outdoor gear", Tone: []string{"bold", "direct"}},
	})
	require.NoError(t, err)

	o := New("user-1", g, mem, nil, quantity, logger.NewNop())
	require.NoError(t, o.Init(context.Background()))
	require.Equal(t, saved.ID, o.ActiveBrandID())
	return o, mem, saved.ID
}

func TestSubmitTurnRequiresActiveBrand(t *testing.T) {
	o := New("user-1", &stubGen{}, store.NewMemory(), nil, 1, logger.NewNop())
	require.NoError(t, o.Init(context.Background()))

	_, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrNoActiveBrand)
}

func TestConversationOnlyTurn(t *testing.T) {
	g := &stubGen{}
	o, _, brandID := newTestOrchestrator(t, g, 1)

	msg, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "what do you think of our name?"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "sounds good", msg.Content)
	assert.Empty(t, msg.AssetIDs)

	history := o.Messages(brandID)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, 0, g.images())
	assert.Equal(t, StageIdle, o.Stage())
}

func TestGeneratedTurnBatchAccounting(t *testing.T) {
	// N descriptors with batch quantity Q yields exactly N*Q synthesis
	// calls and at most N*Q persisted assets.
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("social", "spring launch")}, nil
		},
		specialistOut: assetsBlock(descriptor("hero"), descriptor("lifestyle"), descriptor("conceptual")),
	}
	o, _, brandID := newTestOrchestrator(t, g, 2)

	msg, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "make spring launch posts"})
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, 6, g.images())
	assets := o.Assets()
	require.Len(t, assets, 6)
	assert.Len(t, msg.AssetIDs, 6)

	// Most-recent-first: the last persisted asset is at the front.
	for _, a := range assets {
		assert.Equal(t, brandID, a.BrandID)
		assert.Equal(t, model.AssetStatusPending, a.Status)
		assert.NotEmpty(t, a.ImageURL)
		assert.Equal(t, assets[0].GroupID, a.GroupID)
	}

	// Asset ids are attached to the stored assistant message too.
	history := o.Messages(brandID)
	require.Len(t, history, 2)
	assert.ElementsMatch(t, msg.AssetIDs, history[1].AssetIDs)

	b := o.LastBrief()
	require.NotNil(t, b)
	assert.Equal(t, "social", b.SpecialistType)
}

func TestTurnImageReferenceReachesProvider(t *testing.T) {
	const ref = "data:image/png;base64,aGVsbG8="
	var got string
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			got = req.ImageRef
			return &gen.ConverseResponse{Text: "nice product shot"}, nil
		},
	}
	o, _, brandID := newTestOrchestrator(t, g, 1)

	msg, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{
		Text:     "what do you think of this shot?",
		ImageRef: ref,
	})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, ref, got)

	history := o.Messages(brandID)
	require.Len(t, history, 2)
	assert.Equal(t, ref, history[0].ImageRef)
}

func TestMismatchedDescriptorTypeStaysImageBacked(t *testing.T) {
	// A social brief always resolves through image synthesis, so a
	// descriptor claiming another media type must not yield an asset whose
	// type points at an empty media field.
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("social", "launch reel")}, nil
		},
		specialistOut: assetsBlock(typedDescriptor("reel", "video"), typedDescriptor("post", "social")),
	}
	o, _, _ := newTestOrchestrator(t, g, 1)

	_, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "make a launch reel"})
	require.NoError(t, err)

	assets := o.Assets()
	require.Len(t, assets, 2)
	for _, a := range assets {
		assert.Contains(t, []model.AssetType{model.AssetTypeImage, model.AssetTypeSocial}, a.Type)
		assert.NotEmpty(t, a.ImageURL)
		assert.Empty(t, a.VideoURL)
		assert.NotEmpty(t, a.MediaURL())
	}
	assert.Equal(t, 2, g.images())
	assert.Equal(t, 0, g.videoCalls)
}

func TestVideoSpecialistRoutesToVideoSynthesis(t *testing.T) {
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("video", "teaser clip")}, nil
		},
		specialistOut: assetsBlock(descriptor("teaser")),
	}
	o, _, _ := newTestOrchestrator(t, g, 1)

	_, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "make a teaser video"})
	require.NoError(t, err)

	assets := o.Assets()
	require.Len(t, assets, 1)
	assert.Equal(t, model.AssetTypeVideo, assets[0].Type)
	assert.NotEmpty(t, assets[0].VideoURL)
	assert.Empty(t, assets[0].ImageURL)
	assert.JSONEq(t, `{"operation":"op-1"}`, string(assets[0].GenerationMeta))
	assert.Equal(t, 0, g.images())
}

func TestStaleTurnIsAbandoned(t *testing.T) {
	// T1 blocks inside Converse until T2 has fully completed. T1 must then
	// discard its response: no assistant message, no synthesis.
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	g := &stubGen{}
	g.converseFn = func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			<-release
			return &gen.ConverseResponse{Text: briefResponse("social", "stale campaign")}, nil
		}
		return &gen.ConverseResponse{Text: "quick answer"}, nil
	}
	g.specialistOut = assetsBlock(descriptor("stale"))
	o, _, brandID := newTestOrchestrator(t, g, 1)

	done := make(chan *model.Message, 1)
	go func() {
		msg, _ := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "turn one"})
		done <- msg
	}()

	// Wait until T1 is inside Converse before issuing T2.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	msg2, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "turn two"})
	require.NoError(t, err)
	require.NotNil(t, msg2)
	assert.Equal(t, "quick answer", msg2.Content)

	close(release)
	msg1 := <-done
	assert.Nil(t, msg1)

	// Both user messages were appended optimistically, but only T2's
	// assistant reply landed, and T1 triggered no generation.
	history := o.Messages(brandID)
	require.Len(t, history, 3)
	assert.Equal(t, "turn one", history[0].Content)
	assert.Equal(t, "turn two", history[1].Content)
	assert.Equal(t, model.RoleAssistant, history[2].Role)
	assert.Equal(t, "quick answer", history[2].Content)
	assert.Equal(t, 0, g.images())
	assert.Empty(t, o.Assets())
}

func TestHistoriesArePartitionedPerBrand(t *testing.T) {
	g := &stubGen{}
	o, mem, firstID := newTestOrchestrator(t, g, 1)

	second, err := mem.Brands().Save(context.Background(), "user-1", &model.Brand{
		Name: "Borealis",
		Kit:  &model.BrandKit{Concept: "aurora tours"},
	})
	require.NoError(t, err)
	o.UpsertBrand(*second, false)

	_, err = o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "acme question"})
	require.NoError(t, err)
	before := o.Messages(firstID)
	require.Len(t, before, 2)

	require.True(t, o.SetActiveBrand(second.ID))
	_, err = o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "borealis question"})
	require.NoError(t, err)

	require.True(t, o.SetActiveBrand(firstID))
	after := o.Messages(firstID)
	require.Equal(t, before, after)

	for _, m := range o.Messages(second.ID) {
		assert.Equal(t, second.ID, m.BrandID)
	}
}

func TestDeleteGroupReconcilesAttachments(t *testing.T) {
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("social", "launch")}, nil
		},
		specialistOut: assetsBlock(descriptor("hero"), descriptor("detail")),
	}
	o, mem, brandID := newTestOrchestrator(t, g, 1)

	msg1, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "launch posts", GroupID: "grp-a"})
	require.NoError(t, err)
	require.Len(t, msg1.AssetIDs, 2)

	msg2, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "more launch posts", GroupID: "grp-b"})
	require.NoError(t, err)
	require.Len(t, msg2.AssetIDs, 2)

	require.NoError(t, o.DeleteGroup(context.Background(), "grp-a"))

	for _, a := range o.Assets() {
		assert.Equal(t, "grp-b", a.GroupID)
	}
	remaining, err := mem.Assets().List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	history := o.Messages(brandID)
	require.Len(t, history, 4)
	assert.Empty(t, history[1].AssetIDs)
	assert.ElementsMatch(t, msg2.AssetIDs, history[3].AssetIDs)
}

func TestRenameGroup(t *testing.T) {
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("social", "promo")}, nil
		},
		specialistOut: assetsBlock(descriptor("promo")),
	}
	o, _, _ := newTestOrchestrator(t, g, 1)

	_, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "promo", GroupID: "grp-x"})
	require.NoError(t, err)

	require.NoError(t, o.RenameGroup(context.Background(), "grp-x", "Summer Promo"))
	for _, a := range o.Assets() {
		assert.Equal(t, "Summer Promo", a.GroupTitle)
	}
}

func TestMigrateBrandIDConservesEverything(t *testing.T) {
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("social", "first batch")}, nil
		},
		specialistOut: assetsBlock(descriptor("one"), descriptor("two")),
	}
	o, _, oldID := newTestOrchestrator(t, g, 1)

	_, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "make posts"})
	require.NoError(t, err)

	msgsBefore := len(o.Messages(oldID))
	assetsBefore := len(o.Assets())
	require.Positive(t, msgsBefore)
	require.Positive(t, assetsBefore)

	const newID = "brand-durable-1"
	o.MigrateBrandID(oldID, newID)

	assert.Empty(t, o.Messages(oldID))
	moved := o.Messages(newID)
	require.Len(t, moved, msgsBefore)
	for _, m := range moved {
		assert.Equal(t, newID, m.BrandID)
	}

	assets := o.Assets()
	require.Len(t, assets, assetsBefore)
	for _, a := range assets {
		assert.Equal(t, newID, a.BrandID)
	}
	assert.Equal(t, newID, o.ActiveBrandID())
}

func TestInitPrefersDedicatedTablesOverSnapshot(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedSnapshot("user-1", model.LegacySnapshot{
		Brands: []model.Brand{{ID: "legacy-1", Name: "Legacy Co"}},
		Assets: []model.DesignAsset{{ID: "legacy-asset", BrandID: "legacy-1", Type: model.AssetTypeImage}},
	})
	saved, err := mem.Brands().Save(context.Background(), "user-1", &model.Brand{Name: "Fresh Co"})
	require.NoError(t, err)

	o := New("user-1", &stubGen{}, mem, nil, 1, logger.NewNop())
	require.NoError(t, o.Init(context.Background()))

	brands := o.Brands()
	require.Len(t, brands, 1)
	assert.Equal(t, saved.ID, brands[0].ID)
	assert.Empty(t, o.Assets())
}

func TestInitFallsBackToLegacySnapshot(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedSnapshot("user-1", model.LegacySnapshot{
		Brands:        []model.Brand{{ID: "legacy-1", Name: "Legacy Co"}},
		Assets:        []model.DesignAsset{{ID: "legacy-asset", BrandID: "legacy-1", Type: model.AssetTypeImage}},
		ActiveBrandID: "legacy-1",
	})

	o := New("user-1", &stubGen{}, mem, nil, 1, logger.NewNop())
	require.NoError(t, o.Init(context.Background()))

	require.Len(t, o.Brands(), 1)
	assert.Equal(t, "legacy-1", o.ActiveBrandID())
	require.Len(t, o.Assets(), 1)
	assert.Equal(t, "legacy-asset", o.Assets()[0].ID)
}

func TestExtendVideoAsset(t *testing.T) {
	g := &stubGen{
		converseFn: func(req *gen.ConverseRequest) (*gen.ConverseResponse, error) {
			return &gen.ConverseResponse{Text: briefResponse("video", "teaser")}, nil
		},
		specialistOut: assetsBlock(descriptor("teaser")),
	}
	o, _, _ := newTestOrchestrator(t, g, 1)

	msg, err := o.SubmitTurn(context.Background(), &model.SubmitTurnRequest{Text: "teaser video"})
	require.NoError(t, err)
	require.Len(t, msg.AssetIDs, 1)

	extended, err := o.ExtendVideoAsset(context.Background(), msg.AssetIDs[0], "keep going")
	require.NoError(t, err)
	assert.Equal(t, model.AssetTypeVideo, extended.Type)
	assert.Contains(t, extended.Name, "(extended)")
	assert.Len(t, o.Assets(), 2)
	assert.Equal(t, extended.ID, o.Assets()[0].ID)
}
