package model

import (
	"encoding/json"
	"time"
)

// AssetType is the media type of a generated asset.
type AssetType string

const (
	AssetTypeImage  AssetType = "image"
	AssetTypeVideo  AssetType = "video"
	AssetTypeAudio  AssetType = "audio"
	AssetTypeSocial AssetType = "social"
)

// AssetStatus is the approval status of an asset.
type AssetStatus string

const (
	AssetStatusPending  AssetStatus = "pending"
	AssetStatusApproved AssetStatus = "approved"
	AssetStatusRejected AssetStatus = "rejected"
)

// Performance is a manual or heuristic performance annotation. A "top
// performer" tag elevates the asset as a style reference for future
// generation.
type Performance struct {
	Engagement float64 `json:"engagement"`
	Feedback   string  `json:"feedback,omitempty"`
}

// DesignAsset is a generated creative artifact. Exactly one media URL field
// is populated per asset type; GroupID partitions assets into the folder
// abstraction, which is derived rather than stored as its own entity.
type DesignAsset struct {
	ID         string    `json:"id"`
	BrandID    string    `json:"brand_id"`
	GroupID    string    `json:"group_id"`
	GroupTitle string    `json:"group_title,omitempty"`
	Name       string    `json:"name"`
	Type       AssetType `json:"type"`
	Dimensions string    `json:"dimensions,omitempty"`

	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`

	Prompt      string `json:"prompt,omitempty"`
	Copy        string `json:"copy,omitempty"`
	Description string `json:"description,omitempty"`

	Status         AssetStatus     `json:"status"`
	Performance    *Performance    `json:"performance,omitempty"`
	GenerationMeta json.RawMessage `json:"generation_meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaURL returns whichever media reference is populated for the asset type.
func (a *DesignAsset) MediaURL() string {
	switch a.Type {
	case AssetTypeVideo:
		return a.VideoURL
	case AssetTypeAudio:
		return a.AudioURL
	default:
		return a.ImageURL
	}
}

// SetMediaURL assigns url to the single media field matching the asset type.
func (a *DesignAsset) SetMediaURL(url string) {
	a.ImageURL, a.VideoURL, a.AudioURL = "", "", ""
	switch a.Type {
	case AssetTypeVideo:
		a.VideoURL = url
	case AssetTypeAudio:
		a.AudioURL = url
	default:
		a.ImageURL = url
	}
}

// UpdateAssetRequest is the request to edit an asset's copy or prompt.
type UpdateAssetRequest struct {
	Name        string `json:"name,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Copy        string `json:"copy,omitempty"`
	Description string `json:"description,omitempty"`
}

// AssetStatusRequest is the request to change approval status.
type AssetStatusRequest struct {
	Status AssetStatus `json:"status"`
}

// PerformanceRequest is the request to annotate asset performance.
type PerformanceRequest struct {
	Engagement float64 `json:"engagement"`
	Feedback   string  `json:"feedback,omitempty"`
}

// RenameFolderRequest is the request to retitle an asset group.
type RenameFolderRequest struct {
	Title string `json:"title"`
}
