// Package store provides the record store for brands, assets, and profiles.
package store

import (
	"context"
	"errors"

	"github.com/brandforge/creative-console/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// BrandStore persists brand identity records.
type BrandStore interface {
	// List returns all brands owned by the user.
	List(ctx context.Context, userID string) ([]model.Brand, error)
	// Save inserts when the brand carries no durable identifier and
	// updates otherwise. The returned brand carries the store-assigned id.
	Save(ctx context.Context, userID string, b *model.Brand) (*model.Brand, error)
	Delete(ctx context.Context, id string) error
}

// AssetStore persists design assets.
type AssetStore interface {
	List(ctx context.Context, userID string) ([]model.DesignAsset, error)
	Save(ctx context.Context, userID string, a *model.DesignAsset) (*model.DesignAsset, error)
	Delete(ctx context.Context, id string) error
	DeleteByGroup(ctx context.Context, groupID string) error
	UpdateGroupTitle(ctx context.Context, groupID, title string) error
	UpdatePerformance(ctx context.Context, id string, perf model.Performance) error
	// ReassignBrand moves every asset keyed by oldBrandID to newBrandID.
	ReassignBrand(ctx context.Context, oldBrandID, newBrandID string) error
	DeleteByBrand(ctx context.Context, brandID string) error
}

// ProfileStore persists per-user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Save(ctx context.Context, userID string, p *model.Profile) (*model.Profile, error)
}

// SnapshotStore reads the legacy single-record project snapshot.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) (*model.LegacySnapshot, error)
}

// Store bundles the per-entity stores behind one dependency.
type Store interface {
	Brands() BrandStore
	Assets() AssetStore
	Profiles() ProfileStore
	Snapshots() SnapshotStore
	Ping(ctx context.Context) error
}

// isPlaceholderID reports whether id is a client-generated placeholder that
// the store must replace with a durable identifier on save.
func isPlaceholderID(id string) bool {
	return id == "" || len(id) > 6 && id[:6] == "local-"
}
