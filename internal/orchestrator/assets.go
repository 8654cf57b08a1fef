package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/metrics"
)

// ErrNotVideo is returned when a video extension targets a non-video asset.
var ErrNotVideo = errors.New("asset is not a video")

// UpdateAsset applies a copy/prompt edit to one asset.
func (o *Orchestrator) UpdateAsset(ctx context.Context, id string, req *model.UpdateAssetRequest) (*model.DesignAsset, error) {
	current, ok := o.Asset(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	if req.Name != "" {
		current.Name = req.Name
	}
	if req.Prompt != "" {
		current.Prompt = req.Prompt
	}
	if req.Copy != "" {
		current.Copy = req.Copy
	}
	if req.Description != "" {
		current.Description = req.Description
	}

	saved, err := o.store.Assets().Save(ctx, o.userID, current)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "save").Inc()
		return nil, err
	}
	o.replaceAsset(*saved)
	return saved, nil
}

// SetAssetStatus changes an asset's approval status.
func (o *Orchestrator) SetAssetStatus(ctx context.Context, id string, status model.AssetStatus) (*model.DesignAsset, error) {
	current, ok := o.Asset(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	current.Status = status

	saved, err := o.store.Assets().Save(ctx, o.userID, current)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "save").Inc()
		return nil, err
	}
	o.replaceAsset(*saved)
	return saved, nil
}

// SetAssetPerformance annotates an asset with engagement data. A "top
// performer" tag makes the asset a style reference for future generation.
func (o *Orchestrator) SetAssetPerformance(ctx context.Context, id string, perf model.Performance) error {
	if err := o.store.Assets().UpdatePerformance(ctx, id, perf); err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "performance").Inc()
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	next := make([]model.DesignAsset, len(o.state.Assets))
	copy(next, o.state.Assets)
	for i := range next {
		if next[i].ID == id {
			p := perf
			next[i].Performance = &p
			break
		}
	}
	o.state.Assets = next
	return nil
}

// DeleteAsset removes one asset and strips its id from message attachments.
func (o *Orchestrator) DeleteAsset(ctx context.Context, id string) error {
	if err := o.store.Assets().Delete(ctx, id); err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "delete").Inc()
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	next := make([]model.DesignAsset, 0, len(o.state.Assets))
	for _, a := range o.state.Assets {
		if a.ID != id {
			next = append(next, a)
		}
	}
	o.state.Assets = next

	histories := make(map[string][]model.Message, len(o.state.Histories))
	for key, msgs := range o.state.Histories {
		rewritten := make([]model.Message, len(msgs))
		copy(rewritten, msgs)
		for i := range rewritten {
			if len(rewritten[i].AssetIDs) == 0 {
				continue
			}
			kept := make([]string, 0, len(rewritten[i].AssetIDs))
			for _, aid := range rewritten[i].AssetIDs {
				if aid != id {
					kept = append(kept, aid)
				}
			}
			rewritten[i].AssetIDs = kept
		}
		histories[key] = rewritten
	}
	o.state.Histories = histories
	return nil
}

// ExtendVideoAsset continues a prior video synthesis from the asset's
// stored continuation metadata and persists the result as a new asset in
// the same group.
func (o *Orchestrator) ExtendVideoAsset(ctx context.Context, id, prompt string) (*model.DesignAsset, error) {
	current, ok := o.Asset(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	if current.Type != model.AssetTypeVideo {
		return nil, ErrNotVideo
	}
	if len(current.GenerationMeta) == 0 {
		return nil, fmt.Errorf("asset %s has no continuation metadata", id)
	}
	if prompt == "" {
		prompt = current.Prompt
	}

	res := o.gen.ExtendVideo(ctx, current.GenerationMeta, prompt)
	if res == nil {
		return nil, fmt.Errorf("video extension produced no result")
	}

	asset := &model.DesignAsset{
		BrandID:        current.BrandID,
		GroupID:        current.GroupID,
		GroupTitle:     current.GroupTitle,
		Name:           current.Name + " (extended)",
		Type:           model.AssetTypeVideo,
		Dimensions:     current.Dimensions,
		VideoURL:       res.URL,
		Prompt:         prompt,
		Description:    current.Description,
		Status:         model.AssetStatusPending,
		GenerationMeta: res.Continuation,
	}

	saved, err := o.store.Assets().Save(ctx, o.userID, asset)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "save").Inc()
		return nil, err
	}
	metrics.AssetsPersisted.WithLabelValues(string(saved.Type)).Inc()

	o.mu.Lock()
	next := make([]model.DesignAsset, 0, len(o.state.Assets)+1)
	next = append(next, *saved)
	next = append(next, o.state.Assets...)
	o.state.Assets = next
	o.mu.Unlock()

	return saved, nil
}

// AddAssets merges externally created assets (e.g. onboarding starter
// assets) into the front of the collection.
func (o *Orchestrator) AddAssets(assets []model.DesignAsset) {
	if len(assets) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	next := make([]model.DesignAsset, 0, len(o.state.Assets)+len(assets))
	next = append(next, assets...)
	next = append(next, o.state.Assets...)
	o.state.Assets = next
}

func (o *Orchestrator) replaceAsset(a model.DesignAsset) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := make([]model.DesignAsset, len(o.state.Assets))
	copy(next, o.state.Assets)
	for i := range next {
		if next[i].ID == a.ID {
			next[i] = a
			break
		}
	}
	o.state.Assets = next
}
