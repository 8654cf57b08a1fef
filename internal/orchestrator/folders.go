package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/creative-console/internal/model"
	"github.com/brandforge/creative-console/pkg/metrics"
)

// RenameGroup retitles every asset in a group, in the store and in live
// state.
func (o *Orchestrator) RenameGroup(ctx context.Context, groupID, title string) error {
	if err := o.store.Assets().UpdateGroupTitle(ctx, groupID, title); err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "rename_group").Inc()
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	next := make([]model.DesignAsset, len(o.state.Assets))
	copy(next, o.state.Assets)
	for i := range next {
		if next[i].GroupID == groupID {
			next[i].GroupTitle = title
		}
	}
	o.state.Assets = next
	return nil
}

// DeleteGroup removes every asset in a group and strips those asset ids
// from every message's attachment list. Other groups' assets and
// attachments are untouched.
func (o *Orchestrator) DeleteGroup(ctx context.Context, groupID string) error {
	if err := o.store.Assets().DeleteByGroup(ctx, groupID); err != nil {
		metrics.StoreErrors.WithLabelValues("asset", "delete_group").Inc()
		return err
	}

	o.mu.Lock()
	removed := make(map[string]bool)
	next := make([]model.DesignAsset, 0, len(o.state.Assets))
	for _, a := range o.state.Assets {
		if a.GroupID == groupID {
			removed[a.ID] = true
			continue
		}
		next = append(next, a)
	}
	o.state.Assets = next

	var brandID string
	if len(removed) > 0 {
		histories := make(map[string][]model.Message, len(o.state.Histories))
		for key, msgs := range o.state.Histories {
			rewritten := make([]model.Message, len(msgs))
			copy(rewritten, msgs)
			for i := range rewritten {
				if len(rewritten[i].AssetIDs) == 0 {
					continue
				}
				kept := make([]string, 0, len(rewritten[i].AssetIDs))
				for _, id := range rewritten[i].AssetIDs {
					if !removed[id] {
						kept = append(kept, id)
					}
				}
				if len(kept) != len(rewritten[i].AssetIDs) {
					rewritten[i].AssetIDs = kept
					brandID = key
				}
			}
			histories[key] = rewritten
		}
		o.state.Histories = histories
	}
	if o.state.ActiveGroupID == groupID {
		o.state.ActiveGroupID = ""
	}
	o.mu.Unlock()

	if len(removed) > 0 {
		ids := make([]string, 0, len(removed))
		for id := range removed {
			ids = append(ids, id)
		}
		o.publishEvent(ctx, &model.HistoryEvent{
			ID:        uuid.Must(uuid.NewV7()).String(),
			BrandID:   brandID,
			Type:      model.EventTypeGroupDeleted,
			AssetIDs:  ids,
			Metadata:  map[string]any{"group_id": groupID},
			CreatedAt: time.Now().UTC(),
		})
	}
	return nil
}
