package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
)

// ErrNoActiveBrand is returned when a turn is submitted with no brand
// selected.
var ErrNoActiveBrand = errors.New("no active brand")

// Generator is the slice of the generation gateway the turn pipeline uses.
type Generator interface {
	Converse(ctx context.Context, req *gen.ConverseRequest) (*gen.ConverseResponse, error)
	RunSpecialist(ctx context.Context, b *brief.Brief, brandContext string) (string, error)
	SynthesizeImage(ctx context.Context, prompt, brandColorContext, dimensions string) string
	SynthesizeVideo(ctx context.Context, prompt string) *gen.VideoResult
	ExtendVideo(ctx context.Context, continuation json.RawMessage, prompt string) *gen.VideoResult
	SynthesizeAudio(ctx context.Context, text string) string
}

// History is the durable per-brand history log. All calls are best-effort;
// in-memory state remains authoritative when the log is unavailable.
type History interface {
	PublishMessage(ctx context.Context, msg *model.Message) (uint64, error)
	PublishEvent(ctx context.Context, event *model.HistoryEvent) (uint64, error)
	GetMessages(ctx context.Context, brandID string, afterSequence uint64, limit int) ([]model.Message, uint64, bool, error)
}

// EventKind tags a progress event emitted during turn processing.
type EventKind string

const (
	EventStage         EventKind = "stage"
	EventMessage       EventKind = "message"
	EventAssetAttached EventKind = "asset_attached"
	EventTurnError     EventKind = "turn_error"
)

// Event is one progress notification streamed to connected clients.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Stage     Stage          `json:"stage,omitempty"`
	BrandID   string         `json:"brand_id,omitempty"`
	Message   *model.Message `json:"message,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
	AssetIDs  []string       `json:"asset_ids,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Orchestrator runs the turn pipeline for one user's campaign state.
type Orchestrator struct {
	mu    sync.RWMutex
	state CampaignState
	stage Stage

	// seq is the monotonically increasing turn sequence. Only the turn
	// holding the current value is allowed to keep mutating state.
	seq int64

	userID        string
	batchQuantity int

	gen     Generator
	store   store.Store
	history History
	logger  *logger.Logger

	listeners    map[int]chan Event
	nextListener int
}

// New creates an orchestrator for one user. history may be nil.
func New(userID string, g Generator, st store.Store, history History, batchQuantity int, log *logger.Logger) *Orchestrator {
	if batchQuantity < 1 {
		batchQuantity = 1
	}
	return &Orchestrator{
		state: CampaignState{
			Histories: make(map[string][]model.Message),
		},
		stage:         StageIdle,
		userID:        userID,
		batchQuantity: batchQuantity,
		gen:           g,
		store:         st,
		history:       history,
		logger:        log.With("user_id", userID),
		listeners:     make(map[int]chan Event),
	}
}

// Init runs the session-established load sequence: profile, then brands
// and assets from the dedicated tables, then the legacy snapshot only when
// both came back empty. Histories hydrate best-effort from the log.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.setStage(StageSyncing)
	defer o.setStage(StageIdle)

	profile, err := o.store.Profiles().Get(ctx, o.userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	brands, err := o.store.Brands().List(ctx, o.userID)
	if err != nil {
		return err
	}
	assets, err := o.store.Assets().List(ctx, o.userID)
	if err != nil {
		return err
	}

	var activeBrandID string
	var lastBrief *brief.Brief

	if len(brands) == 0 && len(assets) == 0 {
		snap, err := o.store.Snapshots().Load(ctx, o.userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			o.logger.Warn("legacy snapshot load failed", "error", err)
		}
		if snap != nil {
			brands = snap.Brands
			assets = snap.Assets
			activeBrandID = snap.ActiveBrandID
			if len(snap.LastBrief) > 0 {
				var b brief.Brief
				if err := json.Unmarshal(snap.LastBrief, &b); err == nil {
					lastBrief = &b
				}
			}
		}
	}

	if activeBrandID == "" && len(brands) > 0 {
		activeBrandID = brands[0].ID
	}

	histories := make(map[string][]model.Message, len(brands))
	if o.history != nil {
		for _, b := range brands {
			msgs, _, _, err := o.history.GetMessages(ctx, b.ID, 0, 500)
			if err != nil {
				o.logger.Warn("history hydration failed", "brand_id", b.ID, "error", err)
				continue
			}
			histories[b.ID] = msgs
		}
	}

	o.mu.Lock()
	o.state = CampaignState{
		Profile:       profile,
		Brands:        brands,
		ActiveBrandID: activeBrandID,
		Assets:        assets,
		Histories:     histories,
		LastBrief:     lastBrief,
	}
	o.mu.Unlock()

	o.logger.Info("campaign state initialized",
		"brands", len(brands), "assets", len(assets), "active_brand", activeBrandID)
	return nil
}

// Subscribe registers a progress-event listener. The returned cancel
// function must be called when the listener goes away.
func (o *Orchestrator) Subscribe() (<-chan Event, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextListener
	o.nextListener++
	ch := make(chan Event, 32)
	o.listeners[id] = ch
	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if c, ok := o.listeners[id]; ok {
			delete(o.listeners, id)
			close(c)
		}
	}
}

// broadcast delivers an event to every listener without blocking; slow
// consumers drop events rather than stalling the pipeline.
func (o *Orchestrator) broadcast(ev Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, ch := range o.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (o *Orchestrator) setStage(s Stage) {
	o.mu.Lock()
	o.stage = s
	o.mu.Unlock()
	o.broadcast(Event{Kind: EventStage, Stage: s})
}

// nextSeq claims a new turn sequence number, superseding any outstanding
// turn.
func (o *Orchestrator) nextSeq() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	return o.seq
}

// isCurrent reports whether the given turn is still the latest issued one.
func (o *Orchestrator) isCurrent(seq int64) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.seq == seq
}
