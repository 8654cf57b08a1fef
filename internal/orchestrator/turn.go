package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/pkg/metrics"
)

// SubmitTurn runs the full turn pipeline for the active brand. It returns
// the assistant message once processing completes, or (nil, nil) when the
// turn was superseded by a newer one. Generation and persistence failures
// inside the pipeline degrade or abort silently; only precondition
// violations surface as errors.
func (o *Orchestrator) SubmitTurn(ctx context.Context, req *model.SubmitTurnRequest) (*model.Message, error) {
	o.mu.RLock()
	active := o.activeBrandLocked()
	o.mu.RUnlock()
	if active == nil {
		return nil, ErrNoActiveBrand
	}

	start := time.Now()
	seq := o.nextSeq()
	groupID := o.resolveGroupID(req.GroupID)

	userMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		BrandID:   active.ID,
		Role:      model.RoleUser,
		Content:   req.Text,
		ImageRef:  req.ImageRef,
		CreatedAt: time.Now().UTC(),
	}

	o.mu.Lock()
	o.appendMessageLocked(userMsg)
	history := append([]model.Message(nil), o.state.Histories[active.ID]...)
	locale := ""
	if o.state.Profile != nil {
		locale = o.state.Profile.Locale
	}
	o.mu.Unlock()

	o.publishMessage(ctx, &userMsg)
	o.broadcast(Event{Kind: EventMessage, BrandID: active.ID, Message: &userMsg})
	o.setStage(StageThinking)

	asst, outcome := o.runTurn(ctx, seq, active, groupID, req, history, locale)

	metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	metrics.TurnDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if o.isCurrent(seq) {
		o.setStage(StageIdle)
	}
	return asst, nil
}

// runTurn is steps 4 through 10. The sequence guard is re-checked before
// every gateway call and before every merge; a stale turn stops issuing
// calls and mutating state, keeping whatever it already persisted.
func (o *Orchestrator) runTurn(ctx context.Context, seq int64, active *model.Brand, groupID string, req *model.SubmitTurnRequest, history []model.Message, locale string) (*model.Message, string) {
	userText := req.Text
	resp, err := o.gen.Converse(ctx, &gen.ConverseRequest{
		UserText:     userText,
		ImageRef:     req.ImageRef,
		History:      history[:len(history)-1],
		BrandContext: o.buildBrandContext(),
		Locale:       locale,
	})
	if err != nil {
		o.abandonWithError(ctx, active.ID, "", err)
		return nil, "error"
	}
	if !o.isCurrent(seq) {
		metrics.StaleTurnsAbandoned.Inc()
		return nil, "stale"
	}

	var kit *model.BrandKit
	if active.Kit != nil {
		kit = active.Kit
	}
	ex := brief.Extract(resp.Text, userText, kit)

	asstMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		BrandID:   active.ID,
		Role:      model.RoleAssistant,
		Content:   ex.Text,
		Citations: resp.Citations,
		Ideas:     ex.Ideas,
		CreatedAt: time.Now().UTC(),
	}

	o.mu.Lock()
	o.appendMessageLocked(asstMsg)
	if ex.Brief.Kind != brief.NoBrief {
		b := ex.Brief.Brief
		o.state.LastBrief = &b
	}
	o.mu.Unlock()

	o.publishMessage(ctx, &asstMsg)
	o.broadcast(Event{Kind: EventMessage, BrandID: active.ID, Message: &asstMsg})

	if ex.Brief.Kind == brief.NoBrief {
		return &asstMsg, "conversation"
	}

	o.setStage(StageBriefing)
	turnBrief := ex.Brief.Brief
	raw, err := o.gen.RunSpecialist(ctx, &turnBrief, o.buildBrandContext())
	if err != nil {
		o.abandonWithError(ctx, active.ID, asstMsg.ID, err)
		return &asstMsg, "error"
	}
	if !o.isCurrent(seq) {
		metrics.StaleTurnsAbandoned.Inc()
		return &asstMsg, "stale"
	}

	descriptors := brief.ParseDescriptors(raw)
	if len(descriptors) == 0 {
		return &asstMsg, "conversation"
	}

	o.setStage(StageGenerating)
	assetIDs := o.generateBatch(ctx, seq, active, groupID, &turnBrief, descriptors)
	if !o.isCurrent(seq) {
		metrics.StaleTurnsAbandoned.Inc()
		return &asstMsg, "stale"
	}

	if len(assetIDs) > 0 {
		o.mu.Lock()
		o.attachAssetIDsLocked(active.ID, asstMsg.ID, assetIDs)
		o.mu.Unlock()

		o.publishEvent(ctx, &model.HistoryEvent{
			ID:        uuid.Must(uuid.NewV7()).String(),
			BrandID:   active.ID,
			MessageID: asstMsg.ID,
			Type:      model.EventTypeAssetAttached,
			AssetIDs:  assetIDs,
			CreatedAt: time.Now().UTC(),
		})
		o.broadcast(Event{Kind: EventAssetAttached, BrandID: active.ID, MessageID: asstMsg.ID, AssetIDs: assetIDs})
		asstMsg.AssetIDs = assetIDs
	}

	return &asstMsg, "generated"
}

// generateBatch fans out batchQuantity copies of each descriptor to the
// capability chosen by the brief's specialist type. Newly persisted assets
// are merged to the front of the collection in completion order.
func (o *Orchestrator) generateBatch(ctx context.Context, seq int64, active *model.Brand, groupID string, b *brief.Brief, descriptors []brief.Descriptor) []string {
	groupTitle := groupTitleFor(b)
	colorCtx := active.Kit.PromptContext()

	var ids []string
	for _, d := range descriptors {
		for q := 1; q <= o.batchQuantity; q++ {
			if !o.isCurrent(seq) {
				return ids
			}

			asset := o.synthesizeOne(ctx, active.ID, groupID, groupTitle, b, d, q, colorCtx)
			if asset == nil {
				continue
			}

			saved, err := o.store.Assets().Save(ctx, o.userID, asset)
			if err != nil {
				metrics.StoreErrors.WithLabelValues("asset", "save").Inc()
				o.logger.Error("asset persist failed", "name", asset.Name, "error", err)
				continue
			}
			metrics.AssetsPersisted.WithLabelValues(string(saved.Type)).Inc()

			if !o.isCurrent(seq) {
				// Already persisted, so the save stands; a stale turn
				// just stops merging into live state.
				return ids
			}

			o.mu.Lock()
			next := make([]model.DesignAsset, 0, len(o.state.Assets)+1)
			next = append(next, *saved)
			next = append(next, o.state.Assets...)
			o.state.Assets = next
			o.mu.Unlock()

			ids = append(ids, saved.ID)
		}
	}
	return ids
}

// synthesizeOne issues a single synthesis call and shapes the result into a
// DesignAsset, or nil when the capability produced nothing usable.
func (o *Orchestrator) synthesizeOne(ctx context.Context, brandID, groupID, groupTitle string, b *brief.Brief, d brief.Descriptor, batchIndex int, colorCtx string) *model.DesignAsset {
	asset := &model.DesignAsset{
		BrandID:     brandID,
		GroupID:     groupID,
		GroupTitle:  groupTitle,
		Name:        fmt.Sprintf("%s %d", d.Name, batchIndex),
		Dimensions:  d.Dimensions,
		Prompt:      d.Prompt,
		Copy:        d.Copy,
		Description: d.Description,
		Status:      model.AssetStatusPending,
	}

	switch strings.ToLower(b.SpecialistType) {
	case "video":
		res := o.gen.SynthesizeVideo(ctx, d.Prompt)
		if res == nil {
			return nil
		}
		asset.Type = model.AssetTypeVideo
		asset.VideoURL = res.URL
		asset.GenerationMeta = res.Continuation
	case "music":
		u := o.gen.SynthesizeAudio(ctx, d.Prompt)
		if u == "" {
			return nil
		}
		asset.Type = model.AssetTypeAudio
		asset.AudioURL = u
	default:
		// Image synthesis backs this branch, so the asset type must stay
		// an image-backed one even when a descriptor claims otherwise.
		asset.Type = model.AssetTypeImage
		if assetTypeFor(d.Type) == model.AssetTypeSocial {
			asset.Type = model.AssetTypeSocial
		}
		asset.ImageURL = o.gen.SynthesizeImage(ctx, d.Prompt, colorCtx, d.Dimensions)
	}

	return asset
}

// resolveGroupID reuses an explicit target, else the active group, else
// mints a time-based group for this conversational thread.
func (o *Orchestrator) resolveGroupID(explicit string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if explicit != "" {
		o.state.ActiveGroupID = explicit
		return explicit
	}
	if o.state.ActiveGroupID != "" {
		return o.state.ActiveGroupID
	}
	id := fmt.Sprintf("grp-%d", time.Now().UnixMilli())
	o.state.ActiveGroupID = id
	return id
}

// abandonWithError logs, records the event, and returns the stage to idle.
// Pipeline failures never rethrow to the caller.
func (o *Orchestrator) abandonWithError(ctx context.Context, brandID, messageID string, err error) {
	o.logger.Error("turn aborted", "brand_id", brandID, "error", err)
	o.publishEvent(ctx, &model.HistoryEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		BrandID:   brandID,
		MessageID: messageID,
		Type:      model.EventTypeTurnError,
		Reason:    err.Error(),
		CreatedAt: time.Now().UTC(),
	})
	o.broadcast(Event{Kind: EventTurnError, BrandID: brandID, Error: err.Error()})
}

func (o *Orchestrator) publishMessage(ctx context.Context, msg *model.Message) {
	if o.history == nil {
		return
	}
	if _, err := o.history.PublishMessage(ctx, msg); err != nil {
		o.logger.Warn("history publish failed", "message_id", msg.ID, "error", err)
		return
	}
	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
}

func (o *Orchestrator) publishEvent(ctx context.Context, event *model.HistoryEvent) {
	if o.history == nil {
		return
	}
	if _, err := o.history.PublishEvent(ctx, event); err != nil {
		o.logger.Warn("history event publish failed", "type", string(event.Type), "error", err)
	}
}

func groupTitleFor(b *brief.Brief) string {
	title := strings.TrimSpace(b.Objective)
	if title == "" {
		title = "Untitled campaign"
	}
	if len(title) > 60 {
		title = title[:60]
	}
	return title
}

func assetTypeFor(descriptorType string) model.AssetType {
	switch strings.ToLower(descriptorType) {
	case "video":
		return model.AssetTypeVideo
	case "audio", "music":
		return model.AssetTypeAudio
	case "social":
		return model.AssetTypeSocial
	default:
		return model.AssetTypeImage
	}
}
