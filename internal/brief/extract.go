package brief

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/brandforge/creative-console/internal/model"
)

// blockRe matches one fenced directive block. The tag vocabulary is fixed;
// unknown fences are left in the prose untouched.
var blockRe = regexp.MustCompile("(?s)```json-(ideas|brief|assets)[ \t]*\n?(.*?)```")

// Extract scans assistant response text for directive blocks. userText and
// kit feed the fallback brief when a brief block fails to parse.
func Extract(responseText, userText string, kit *model.BrandKit) Extraction {
	ex := Extraction{Brief: Result{Kind: NoBrief}}

	matches := blockRe.FindAllStringSubmatch(responseText, -1)
	for _, m := range matches {
		tag, body := m[1], strings.TrimSpace(m[2])
		switch tag {
		case "ideas":
			var ideas []model.Idea
			if err := json.Unmarshal([]byte(body), &ideas); err == nil {
				ex.Ideas = ideas
			}
		case "brief":
			var b Brief
			if err := json.Unmarshal([]byte(body), &b); err == nil && b.SpecialistType != "" {
				ex.Brief = Result{Kind: Parsed, Brief: b}
			} else {
				// The model signaled intent to create something but
				// produced malformed structure; the pipeline still
				// needs a brief to act on.
				ex.Brief = Result{Kind: Fallback, Brief: FallbackBrief(userText, kit)}
			}
		}
	}

	ex.Text = strings.TrimSpace(blockRe.ReplaceAllString(responseText, ""))
	return ex
}

// FallbackBrief constructs the deterministic best-guess brief used when a
// brief block is present but unparseable.
func FallbackBrief(userText string, kit *model.BrandKit) Brief {
	audience := "general audience"
	tone := "modern, clean"
	if kit != nil {
		if kit.Concept != "" {
			audience = "audience of: " + kit.Concept
		}
		if len(kit.Tone) > 0 {
			tone = strings.Join(kit.Tone, ", ")
		}
	}

	return Brief{
		SpecialistType: "social",
		Objective:      userText,
		Audience:       audience,
		VisualTone:     tone,
		Format:         InferFormat(userText),
	}
}

// storiesTerms is the documented rule table for format inference: any of
// these in the user text selects the vertical "stories" format.
var storiesTerms = []string{"stories", "story", "reel", "vertical"}

// InferFormat picks a target format from the raw user text.
func InferFormat(userText string) string {
	lower := strings.ToLower(userText)
	for _, term := range storiesTerms {
		if strings.Contains(lower, term) {
			return "stories"
		}
	}
	return "feed"
}

// ParseDescriptors extracts the asset descriptor list from a specialist
// response. A single-object body is normalized into a one-element slice.
// Returns nil when no assets block is present.
func ParseDescriptors(raw string) []Descriptor {
	body := ""
	for _, m := range blockRe.FindAllStringSubmatch(raw, -1) {
		if m[1] == "assets" {
			body = strings.TrimSpace(m[2])
			break
		}
	}
	if body == "" {
		// Some specialist responses are bare JSON with no fence.
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			body = trimmed
		} else {
			return nil
		}
	}

	var list []Descriptor
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return list
	}

	var single Descriptor
	if err := json.Unmarshal([]byte(body), &single); err == nil && single.Prompt != "" {
		return []Descriptor{single}
	}

	return nil
}
