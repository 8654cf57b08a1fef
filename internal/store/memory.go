package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/creative-console/internal/model"
)

// Memory is an in-memory record store used for tests and local development.
type Memory struct {
	mu          sync.RWMutex
	brands      map[string]model.Brand
	assets      map[string]model.DesignAsset
	assetOwners map[string]string
	profiles    map[string]model.Profile
	snapshots   map[string]model.LegacySnapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		brands:      make(map[string]model.Brand),
		assets:      make(map[string]model.DesignAsset),
		assetOwners: make(map[string]string),
		profiles:    make(map[string]model.Profile),
		snapshots:   make(map[string]model.LegacySnapshot),
	}
}

func (m *Memory) Brands() BrandStore       { return (*memBrands)(m) }
func (m *Memory) Assets() AssetStore       { return (*memAssets)(m) }
func (m *Memory) Profiles() ProfileStore   { return (*memProfiles)(m) }
func (m *Memory) Snapshots() SnapshotStore { return (*memSnapshots)(m) }

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error { return nil }

// SeedSnapshot installs a legacy snapshot for a user. Test helper.
func (m *Memory) SeedSnapshot(userID string, snap model.LegacySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[userID] = snap
}

type memBrands Memory

func (m *memBrands) List(ctx context.Context, userID string) ([]model.Brand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Brand
	for _, b := range m.brands {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memBrands) Save(ctx context.Context, userID string, b *model.Brand) (*model.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *b
	saved.UserID = userID
	saved.UpdatedAt = time.Now()
	if isPlaceholderID(saved.ID) {
		saved.ID = uuid.Must(uuid.NewV7()).String()
		saved.CreatedAt = saved.UpdatedAt
	} else if _, ok := m.brands[saved.ID]; !ok {
		return nil, ErrNotFound
	}
	m.brands[saved.ID] = saved
	return &saved, nil
}

func (m *memBrands) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.brands, id)
	return nil
}

type memAssets Memory

func (m *memAssets) List(ctx context.Context, userID string) ([]model.DesignAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.DesignAsset
	for id, a := range m.assets {
		if m.assetOwners[id] == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memAssets) Save(ctx context.Context, userID string, a *model.DesignAsset) (*model.DesignAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *a
	saved.UpdatedAt = time.Now()
	if saved.Status == "" {
		saved.Status = model.AssetStatusPending
	}
	if isPlaceholderID(saved.ID) {
		saved.ID = uuid.Must(uuid.NewV7()).String()
		saved.CreatedAt = saved.UpdatedAt
	} else if _, ok := m.assets[saved.ID]; !ok {
		return nil, ErrNotFound
	}
	m.assets[saved.ID] = saved
	m.assetOwners[saved.ID] = userID
	return &saved, nil
}

func (m *memAssets) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assets, id)
	delete(m.assetOwners, id)
	return nil
}

func (m *memAssets) DeleteByGroup(ctx context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assets {
		if a.GroupID == groupID {
			delete(m.assets, id)
			delete(m.assetOwners, id)
		}
	}
	return nil
}

func (m *memAssets) UpdateGroupTitle(ctx context.Context, groupID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assets {
		if a.GroupID == groupID {
			a.GroupTitle = title
			a.UpdatedAt = time.Now()
			m.assets[id] = a
		}
	}
	return nil
}

func (m *memAssets) UpdatePerformance(ctx context.Context, id string, perf model.Performance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return ErrNotFound
	}
	p := perf
	a.Performance = &p
	a.UpdatedAt = time.Now()
	m.assets[id] = a
	return nil
}

func (m *memAssets) ReassignBrand(ctx context.Context, oldBrandID, newBrandID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assets {
		if a.BrandID == oldBrandID {
			a.BrandID = newBrandID
			a.UpdatedAt = time.Now()
			m.assets[id] = a
		}
	}
	return nil
}

func (m *memAssets) DeleteByBrand(ctx context.Context, brandID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.assets {
		if a.BrandID == brandID {
			delete(m.assets, id)
			delete(m.assetOwners, id)
		}
	}
	return nil
}

type memProfiles Memory

func (m *memProfiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) Save(ctx context.Context, userID string, p *model.Profile) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *p
	saved.UserID = userID
	saved.UpdatedAt = time.Now()
	if isPlaceholderID(saved.ID) {
		saved.ID = uuid.Must(uuid.NewV7()).String()
		saved.CreatedAt = saved.UpdatedAt
	}
	m.profiles[userID] = saved
	return &saved, nil
}

type memSnapshots Memory

func (m *memSnapshots) Load(ctx context.Context, userID string) (*model.LegacySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}
