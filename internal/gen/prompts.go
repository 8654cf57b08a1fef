package gen

import (
	"fmt"
	"strings"

	"github.com/brandforge/creative-console/internal/brief"
)

func converseSystemPrompt(brandContext, locale string) string {
	var b strings.Builder
	b.WriteString("You are a marketing creative director for a brand console. ")
	b.WriteString("Answer conversationally and keep replies concise.\n\n")
	if brandContext != "" {
		b.WriteString("Brand context: " + brandContext + "\n\n")
	}
	if locale != "" {
		b.WriteString("Reply in the user's locale: " + locale + "\n\n")
	}
	b.WriteString("When the user should choose between creative directions, append a fenced block tagged json-ideas ")
	b.WriteString("containing a JSON array of {id, title, description} options.\n")
	b.WriteString("When the user asks to create assets, append a fenced block tagged json-brief containing a JSON object with ")
	b.WriteString("specialist_type (social, video, music, or logo), objective, audience, visual_tone, format, and quantity.\n")
	b.WriteString("Never mention the fenced blocks in your prose.")
	return b.String()
}

const identitySystemPrompt = `You are a brand strategist. Respond with a single JSON object and nothing else, with keys:
concept (string), tone (array of strings, ordered by relevance),
palette (object with primary, secondary, accent, neutral_light, neutral_dark hex colors),
typography (object with display, body, mono font names),
logo_url, symbol_url, icon_url (strings, may be empty), logo_variations (array of strings).
All palette and typography slots are required.`

func identityUserPrompt(req *IdentityRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Propose a complete brand identity for %q.\n", req.Name)
	if req.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", req.Website)
	}
	if len(req.Socials) > 0 {
		fmt.Fprintf(&b, "Social handles: %s\n", strings.Join(req.Socials, ", "))
	}
	if len(req.ReferenceImages) > 0 {
		fmt.Fprintf(&b, "Visual references: %s\n", strings.Join(req.ReferenceImages, ", "))
	}
	for _, comp := range req.Competitors {
		fmt.Fprintf(&b, "Competitor: %s (%s)\n", comp.Name, comp.URL)
	}
	return b.String()
}

func specialistSystemPrompt(specialistType string) string {
	role := "a social media creative"
	switch specialistType {
	case "video":
		role = "a video creative director"
	case "music":
		role = "an audio branding producer"
	case "logo":
		role = "a logo designer"
	}
	return "You are " + role + ". Respond with a fenced block tagged json-assets containing a JSON array of asset " +
		"descriptors, each with name, type, dimensions, prompt, copy, and description. " +
		"For campaign briefs produce multiple distinct variations (hero, lifestyle, conceptual) rather than one repeated direction."
}

func specialistUserPrompt(b *brief.Brief, brandContext string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Objective: %s\n", b.Objective)
	if b.Audience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", b.Audience)
	}
	if b.VisualTone != "" {
		fmt.Fprintf(&sb, "Visual tone: %s\n", b.VisualTone)
	}
	if b.Format != "" {
		fmt.Fprintf(&sb, "Target format: %s\n", b.Format)
	}
	if b.Quantity > 0 {
		fmt.Fprintf(&sb, "Quantity: %d\n", b.Quantity)
	}
	if brandContext != "" {
		fmt.Fprintf(&sb, "Brand context: %s\n", brandContext)
	}
	return sb.String()
}
