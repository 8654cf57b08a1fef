// Package brief separates the orchestrator's mixed prose-plus-directive
// responses into human-readable text and typed structured blocks.
package brief

import (
	"github.com/brandforge/creative-console/internal/model"
)

// Brief is the structured extraction of a user request.
type Brief struct {
	SpecialistType string `json:"specialist_type"`
	Objective      string `json:"objective"`
	Audience       string `json:"audience,omitempty"`
	VisualTone     string `json:"visual_tone,omitempty"`
	Format         string `json:"format,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
}

// Kind tags the outcome of brief extraction.
type Kind int

const (
	// NoBrief means the response carried no brief block; the turn is
	// conversation-only.
	NoBrief Kind = iota
	// Parsed means a brief block parsed strictly.
	Parsed
	// Fallback means a brief block was present but malformed, and a
	// deterministic fallback brief was constructed instead.
	Fallback
)

// Result is the tagged outcome of brief extraction.
type Result struct {
	Kind  Kind
	Brief Brief
}

// Descriptor is one asset descriptor from a specialist response.
type Descriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Dimensions  string `json:"dimensions,omitempty"`
	Prompt      string `json:"prompt"`
	Copy        string `json:"copy,omitempty"`
	Description string `json:"description,omitempty"`
}

// Extraction is the full result of scanning one assistant response.
type Extraction struct {
	// Text is the human-readable portion with all recognized blocks
	// stripped, regardless of parse success.
	Text  string
	Ideas []model.Idea
	Brief Result
}
