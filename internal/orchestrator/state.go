// Package orchestrator owns the per-user campaign state machine: brands,
// the active selection, the asset collection, and per-brand conversation
// histories, mutated only through the turn pipeline and the explicit
// operations defined here.
package orchestrator

import (
	"strings"

	"github.com/brandforge/creative-console/internal/brief"
	"github.com/brandforge/creative-console/internal/model"
)

// Stage is the orchestrator's processing stage for the outstanding turn.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageThinking   Stage = "thinking"
	StageBriefing   Stage = "briefing"
	StageGenerating Stage = "generating"
	StageSyncing    Stage = "syncing"
)

// CampaignState is the aggregate the orchestrator guards. Assets are held
// most-recent-first; histories are partitioned strictly by brand id.
type CampaignState struct {
	Profile       *model.Profile
	Brands        []model.Brand
	ActiveBrandID string
	ActiveGroupID string
	Assets        []model.DesignAsset
	Histories     map[string][]model.Message
	LastBrief     *brief.Brief
}

// Brands returns a copy of the brand list.
func (o *Orchestrator) Brands() []model.Brand {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]model.Brand, len(o.state.Brands))
	copy(out, o.state.Brands)
	return out
}

// ActiveBrandID returns the currently active brand id, or empty.
func (o *Orchestrator) ActiveBrandID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.ActiveBrandID
}

// ActiveBrand returns a copy of the active brand, or nil.
func (o *Orchestrator) ActiveBrand() *model.Brand {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.activeBrandLocked()
}

func (o *Orchestrator) activeBrandLocked() *model.Brand {
	for i := range o.state.Brands {
		if o.state.Brands[i].ID == o.state.ActiveBrandID {
			b := o.state.Brands[i]
			return &b
		}
	}
	return nil
}

// SetActiveBrand switches the active selection. Switching never merges
// histories; it only changes which partition subsequent reads resolve to.
func (o *Orchestrator) SetActiveBrand(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.state.Brands {
		if o.state.Brands[i].ID == id {
			o.state.ActiveBrandID = id
			o.state.ActiveGroupID = ""
			return true
		}
	}
	return false
}

// Assets returns a copy of the asset list, most-recent-first.
func (o *Orchestrator) Assets() []model.DesignAsset {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]model.DesignAsset, len(o.state.Assets))
	copy(out, o.state.Assets)
	return out
}

// Asset returns a copy of one asset by id.
func (o *Orchestrator) Asset(id string) (*model.DesignAsset, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for i := range o.state.Assets {
		if o.state.Assets[i].ID == id {
			a := o.state.Assets[i]
			return &a, true
		}
	}
	return nil, false
}

// Messages returns a copy of one brand's conversation history.
func (o *Orchestrator) Messages(brandID string) []model.Message {
	o.mu.RLock()
	defer o.mu.RUnlock()
	msgs := o.state.Histories[brandID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// LastBrief returns the most recently extracted brief, or nil.
func (o *Orchestrator) LastBrief() *brief.Brief {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.state.LastBrief == nil {
		return nil
	}
	b := *o.state.LastBrief
	return &b
}

// Stage returns the current processing stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stage
}

// UpsertBrand replaces or appends a brand in state. When activate is true
// the selection moves to it.
func (o *Orchestrator) UpsertBrand(b model.Brand, activate bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	replaced := false
	next := make([]model.Brand, len(o.state.Brands))
	copy(next, o.state.Brands)
	for i := range next {
		if next[i].ID == b.ID {
			next[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, b)
	}
	o.state.Brands = next
	if activate || o.state.ActiveBrandID == "" {
		o.state.ActiveBrandID = b.ID
	}
}

// RemoveBrand drops a brand and its history and assets from state. The
// active selection falls back to the first remaining brand, or to none.
func (o *Orchestrator) RemoveBrand(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := make([]model.Brand, 0, len(o.state.Brands))
	for _, b := range o.state.Brands {
		if b.ID != id {
			next = append(next, b)
		}
	}
	o.state.Brands = next

	assets := make([]model.DesignAsset, 0, len(o.state.Assets))
	for _, a := range o.state.Assets {
		if a.BrandID != id {
			assets = append(assets, a)
		}
	}
	o.state.Assets = assets

	histories := make(map[string][]model.Message, len(o.state.Histories))
	for k, v := range o.state.Histories {
		if k != id {
			histories[k] = v
		}
	}
	o.state.Histories = histories

	if o.state.ActiveBrandID == id {
		o.state.ActiveBrandID = ""
		if len(next) > 0 {
			o.state.ActiveBrandID = next[0].ID
		}
		o.state.ActiveGroupID = ""
	}
}

// MigrateBrandID re-keys every asset and message from oldID to newID in one
// step under the lock, so no entry is lost or duplicated by an interleaved
// read.
func (o *Orchestrator) MigrateBrandID(oldID, newID string) {
	if oldID == "" || oldID == newID {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	brands := make([]model.Brand, len(o.state.Brands))
	copy(brands, o.state.Brands)
	for i := range brands {
		if brands[i].ID == oldID {
			brands[i].ID = newID
		}
	}
	o.state.Brands = brands

	assets := make([]model.DesignAsset, len(o.state.Assets))
	copy(assets, o.state.Assets)
	for i := range assets {
		if assets[i].BrandID == oldID {
			assets[i].BrandID = newID
		}
	}
	o.state.Assets = assets

	if msgs, ok := o.state.Histories[oldID]; ok {
		moved := make([]model.Message, len(msgs))
		copy(moved, msgs)
		for i := range moved {
			moved[i].BrandID = newID
		}
		histories := make(map[string][]model.Message, len(o.state.Histories))
		for k, v := range o.state.Histories {
			if k != oldID {
				histories[k] = v
			}
		}
		histories[newID] = append(moved, histories[newID]...)
		o.state.Histories = histories
	}

	if o.state.ActiveBrandID == oldID {
		o.state.ActiveBrandID = newID
	}
}

// appendMessageLocked appends to a brand's history by whole-slice
// replacement.
func (o *Orchestrator) appendMessageLocked(msg model.Message) {
	msgs := o.state.Histories[msg.BrandID]
	next := make([]model.Message, len(msgs), len(msgs)+1)
	copy(next, msgs)
	next = append(next, msg)
	if o.state.Histories == nil {
		o.state.Histories = make(map[string][]model.Message)
	}
	o.state.Histories[msg.BrandID] = next
}

// attachAssetIDsLocked sets the asset ids on the message with the given id.
func (o *Orchestrator) attachAssetIDsLocked(brandID, messageID string, assetIDs []string) {
	msgs := o.state.Histories[brandID]
	next := make([]model.Message, len(msgs))
	copy(next, msgs)
	for i := range next {
		if next[i].ID == messageID {
			next[i].AssetIDs = assetIDs
			break
		}
	}
	o.state.Histories[brandID] = next
}

// buildBrandContext renders the active brand's kit plus its top-performing
// creative patterns as prompt context. Missing kits degrade to empty
// context rather than failing the turn.
func (o *Orchestrator) buildBrandContext() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	b := o.activeBrandLocked()
	if b == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(b.Kit.PromptContext())

	var winners []string
	for _, a := range o.state.Assets {
		if a.BrandID != b.ID || a.Performance == nil {
			continue
		}
		if strings.EqualFold(a.Performance.Feedback, "top performer") && a.Prompt != "" {
			winners = append(winners, a.Prompt)
		}
		if len(winners) == 3 {
			break
		}
	}
	if len(winners) > 0 {
		sb.WriteString("Past high-performing creative directions: ")
		sb.WriteString(strings.Join(winners, "; "))
		sb.WriteString(". ")
	}
	return sb.String()
}
