package model

import (
	"time"
)

// EventType represents the type of history event.
type EventType string

const (
	EventTypeAssetAttached EventType = "asset_attached"
	EventTypeTurnError     EventType = "turn_error"
	EventTypeGroupDeleted  EventType = "group_deleted"
)

// HistoryEvent records a non-message occurrence in a brand's history log.
// Messages are append-only in the log, so the asset-id attachment that
// happens after asynchronous generation is recorded as an event.
type HistoryEvent struct {
	ID        string         `json:"id"`
	BrandID   string         `json:"brand_id"`
	MessageID string         `json:"message_id,omitempty"`
	Type      EventType      `json:"type"`
	Reason    string         `json:"reason,omitempty"`
	AssetIDs  []string       `json:"asset_ids,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Sequence  uint64         `json:"sequence,omitempty"`
}
