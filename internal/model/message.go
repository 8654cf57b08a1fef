package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Citation is grounding metadata surfaced from a retrieval-backed reply.
type Citation struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}

// Idea is one selectable option presented to the user by the assistant.
type Idea struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Message is one conversational turn in a brand's history. Never mutated
// after creation except to attach asset ids once generation completes.
type Message struct {
	ID      string `json:"id"`
	BrandID string `json:"brand_id"`

	Role     Role   `json:"role"`
	Content  string `json:"content"`
	ImageRef string `json:"image_ref,omitempty"`

	Citations []Citation `json:"citations,omitempty"`
	Ideas     []Idea     `json:"ideas,omitempty"`
	AssetIDs  []string   `json:"asset_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// JetStream metadata, populated on read from the history log.
	Sequence uint64 `json:"sequence,omitempty"`
}

// SubmitTurnRequest is the request to submit a conversational turn.
type SubmitTurnRequest struct {
	Text     string `json:"text"`
	ImageRef string `json:"image_ref,omitempty"`
	GroupID  string `json:"group_id,omitempty"`
}

// ListMessagesResponse is the response for listing a brand's messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	BrandID  string    `json:"brand_id"`
}
