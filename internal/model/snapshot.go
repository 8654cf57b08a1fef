package model

import (
	"encoding/json"
)

// LegacySnapshot is the historical single-record project format bundling
// brands, assets, brief, and active brand id as one JSON blob. Read-only
// compatibility path, consulted only when the dedicated per-entity tables
// are empty.
type LegacySnapshot struct {
	Brands        []Brand         `json:"brands"`
	Assets        []DesignAsset   `json:"assets"`
	ActiveBrandID string          `json:"active_brand_id,omitempty"`
	LastBrief     json.RawMessage `json:"last_brief,omitempty"`
}
