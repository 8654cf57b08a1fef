package store

import (
	"encoding/json"
	"fmt"

	"github.com/brandforge/creative-console/internal/model"
)

// DecodeLegacySnapshot parses the historical single-blob project format.
// The blob bundles brands, assets, last brief, and active brand id; older
// writers used camelCase keys, so both spellings are accepted.
func DecodeLegacySnapshot(data []byte) (*model.LegacySnapshot, error) {
	var snap model.LegacySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode legacy snapshot: %w", err)
	}

	if snap.ActiveBrandID == "" {
		var compat struct {
			ActiveBrandID string `json:"activeBrandId"`
		}
		if err := json.Unmarshal(data, &compat); err == nil {
			snap.ActiveBrandID = compat.ActiveBrandID
		}
	}

	// The snapshot may name an active brand that was since removed from
	// its embedded brand list; drop the reference rather than carry a
	// dangling id forward.
	if snap.ActiveBrandID != "" {
		found := false
		for _, b := range snap.Brands {
			if b.ID == snap.ActiveBrandID {
				found = true
				break
			}
		}
		if !found {
			snap.ActiveBrandID = ""
		}
	}

	return &snap, nil
}
