// Package model defines data structures for the creative console.
package model

import (
	"strings"
	"time"
)

// Competitor is a named competitor reference gathered during onboarding.
type Competitor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Palette is the fixed five-slot brand color palette.
type Palette struct {
	Primary      string `json:"primary"`
	Secondary    string `json:"secondary"`
	Accent       string `json:"accent"`
	NeutralLight string `json:"neutral_light"`
	NeutralDark  string `json:"neutral_dark"`
}

// Typography is the fixed three-slot typeface assignment.
type Typography struct {
	Display string `json:"display"`
	Body    string `json:"body"`
	Mono    string `json:"mono"`
}

// BrandKit holds identity attributes derived from AI analysis or manual input.
// Owned exclusively by its Brand; replaced wholesale on re-scan, patched
// incrementally on manual asset upload.
type BrandKit struct {
	Concept        string     `json:"concept"`
	Tone           []string   `json:"tone,omitempty"`
	Palette        Palette    `json:"palette"`
	Typography     Typography `json:"typography"`
	LogoURL        string     `json:"logo_url,omitempty"`
	SymbolURL      string     `json:"symbol_url,omitempty"`
	IconURL        string     `json:"icon_url,omitempty"`
	LogoVariations []string   `json:"logo_variations,omitempty"`
}

// PromptContext renders the kit as prompt context so generated output
// stays on-brand.
func (k *BrandKit) PromptContext() string {
	if k == nil {
		return ""
	}

	var b strings.Builder
	if k.Concept != "" {
		b.WriteString("Brand concept: " + k.Concept + ". ")
	}
	if k.Palette.Primary != "" {
		b.WriteString("Brand colors: primary " + k.Palette.Primary)
		if k.Palette.Secondary != "" {
			b.WriteString(", secondary " + k.Palette.Secondary)
		}
		if k.Palette.Accent != "" {
			b.WriteString(", accent " + k.Palette.Accent)
		}
		b.WriteString(". ")
	}
	if len(k.Tone) > 0 {
		b.WriteString("Tone of voice: " + strings.Join(k.Tone, ", ") + ". ")
	}
	if k.Typography.Display != "" {
		b.WriteString("Display typeface: " + k.Typography.Display + ". ")
	}
	return b.String()
}

// Brand is an identity record.
type Brand struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Name            string       `json:"name"`
	Website         string       `json:"website,omitempty"`
	Socials         []string     `json:"socials,omitempty"`
	Competitors     []Competitor `json:"competitors,omitempty"`
	ReferenceImages []string     `json:"reference_images,omitempty"`
	Kit             *BrandKit    `json:"kit,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsNew reports whether the brand still has to pass through onboarding
// before being treated as fully configured.
func (b *Brand) IsNew() bool {
	return b.Kit == nil || b.Kit.Concept == ""
}

// SaveBrandRequest is the request to create or update a brand.
type SaveBrandRequest struct {
	ID              string       `json:"id,omitempty"`
	Name            string       `json:"name"`
	Website         string       `json:"website,omitempty"`
	Socials         []string     `json:"socials,omitempty"`
	Competitors     []Competitor `json:"competitors,omitempty"`
	ReferenceImages []string     `json:"reference_images,omitempty"`
	Kit             *BrandKit    `json:"kit,omitempty"`
}

// Profile is the per-user profile record.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Locale      string    `json:"locale,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
