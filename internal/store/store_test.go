package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/creative-console/internal/model"
)

func TestBrandSaveAssignsDurableID(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	cases := []struct {
		name string
		id   string
	}{
		{"empty id", ""},
		{"client placeholder", "local-1724102400000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			saved, err := mem.Brands().Save(ctx, "user-1", &model.Brand{ID: tc.id, Name: "Acme"})
			require.NoError(t, err)
			assert.NotEmpty(t, saved.ID)
			assert.NotEqual(t, tc.id, saved.ID)
			assert.Equal(t, "user-1", saved.UserID)
		})
	}
}

func TestBrandSaveUpdateUnknownIDFails(t *testing.T) {
	mem := NewMemory()
	_, err := mem.Brands().Save(context.Background(), "user-1", &model.Brand{ID: "missing", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssetGroupOperations(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	for _, g := range []string{"grp-a", "grp-a", "grp-b"} {
		_, err := mem.Assets().Save(ctx, "user-1", &model.DesignAsset{
			BrandID: "b-1", GroupID: g, Name: "a", Type: model.AssetTypeImage,
		})
		require.NoError(t, err)
	}

	require.NoError(t, mem.Assets().UpdateGroupTitle(ctx, "grp-a", "Renamed"))
	require.NoError(t, mem.Assets().DeleteByGroup(ctx, "grp-a"))

	remaining, err := mem.Assets().List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "grp-b", remaining[0].GroupID)
	assert.Empty(t, remaining[0].GroupTitle)
}

func TestAssetListScopedToOwner(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	mine, err := mem.Assets().Save(ctx, "user-1", &model.DesignAsset{
		BrandID: "b-1", GroupID: "g", Name: "mine", Type: model.AssetTypeImage,
	})
	require.NoError(t, err)
	_, err = mem.Assets().Save(ctx, "user-2", &model.DesignAsset{
		BrandID: "b-2", GroupID: "g", Name: "theirs", Type: model.AssetTypeImage,
	})
	require.NoError(t, err)

	assets, err := mem.Assets().List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, mine.ID, assets[0].ID)

	none, err := mem.Assets().List(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAssetReassignBrand(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := mem.Assets().Save(ctx, "user-1", &model.DesignAsset{
			BrandID: "local-old", GroupID: "g", Name: "a", Type: model.AssetTypeImage,
		})
		require.NoError(t, err)
	}
	require.NoError(t, mem.Assets().ReassignBrand(ctx, "local-old", "durable-new"))

	assets, err := mem.Assets().List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	for _, a := range assets {
		assert.Equal(t, "durable-new", a.BrandID)
	}
}

func TestIsPlaceholderID(t *testing.T) {
	assert.True(t, isPlaceholderID(""))
	assert.True(t, isPlaceholderID("local-123"))
	assert.False(t, isPlaceholderID("local"))
	assert.False(t, isPlaceholderID("0190a8b0-3c4d-7000-8000-000000000000"))
}

func TestDecodeLegacySnapshot(t *testing.T) {
	t.Run("snake case", func(t *testing.T) {
		snap, err := DecodeLegacySnapshot([]byte(`{
			"brands":[{"id":"b-1","name":"Acme"}],
			"assets":[{"id":"a-1","brand_id":"b-1","type":"image"}],
			"active_brand_id":"b-1"
		}`))
		require.NoError(t, err)
		assert.Equal(t, "b-1", snap.ActiveBrandID)
		assert.Len(t, snap.Brands, 1)
		assert.Len(t, snap.Assets, 1)
	})

	t.Run("camel case compat", func(t *testing.T) {
		snap, err := DecodeLegacySnapshot([]byte(`{
			"brands":[{"id":"b-1","name":"Acme"}],
			"activeBrandId":"b-1"
		}`))
		require.NoError(t, err)
		assert.Equal(t, "b-1", snap.ActiveBrandID)
	})

	t.Run("dangling active id dropped", func(t *testing.T) {
		snap, err := DecodeLegacySnapshot([]byte(`{
			"brands":[{"id":"b-1","name":"Acme"}],
			"active_brand_id":"b-gone"
		}`))
		require.NoError(t, err)
		assert.Empty(t, snap.ActiveBrandID)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeLegacySnapshot([]byte(`not json`))
		assert.Error(t, err)
	})
}
