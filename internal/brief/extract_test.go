package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/creative-console/internal/model"
)

func TestExtract_Brief(t *testing.T) {
	t.Run("well-formed block yields exact brief", func(t *testing.T) {
		resp := "Great, here is the plan.\n```json-brief\n" +
			`{"specialist_type":"video","objective":"launch teaser","audience":"gen z","visual_tone":"bold","format":"stories","quantity":2}` +
			"\n```\nLet me know what you think."

		ex := Extract(resp, "make a teaser", nil)

		require.Equal(t, Parsed, ex.Brief.Kind)
		assert.Equal(t, Brief{
			SpecialistType: "video",
			Objective:      "launch teaser",
			Audience:       "gen z",
			VisualTone:     "bold",
			Format:         "stories",
			Quantity:       2,
		}, ex.Brief.Brief)
		assert.Equal(t, "Great, here is the plan.\n\nLet me know what you think.", ex.Text)
	})

	t.Run("malformed block yields fallback", func(t *testing.T) {
		resp := "On it.\n```json-brief\n{not json at all\n```"
		kit := &model.BrandKit{Tone: []string{"playful", "warm"}}

		ex := Extract(resp, "post some stories for the sale", kit)

		require.Equal(t, Fallback, ex.Brief.Kind)
		assert.Equal(t, "social", ex.Brief.Brief.SpecialistType)
		assert.Equal(t, "post some stories for the sale", ex.Brief.Brief.Objective)
		assert.Equal(t, "playful, warm", ex.Brief.Brief.VisualTone)
		assert.Equal(t, "stories", ex.Brief.Brief.Format)
		assert.Equal(t, "On it.", ex.Text, "malformed block is still stripped")
	})

	t.Run("no block yields no brief", func(t *testing.T) {
		ex := Extract("Just a friendly reply.", "hello", nil)
		assert.Equal(t, NoBrief, ex.Brief.Kind)
		assert.Equal(t, "Just a friendly reply.", ex.Text)
	})

	t.Run("empty specialist type is treated as malformed", func(t *testing.T) {
		resp := "```json-brief\n{\"objective\":\"x\"}\n```"
		ex := Extract(resp, "make an ad", nil)
		assert.Equal(t, Fallback, ex.Brief.Kind)
	})
}

func TestExtract_Ideas(t *testing.T) {
	resp := "Pick a direction:\n```json-ideas\n" +
		`[{"id":"a","title":"Hero shot","description":"Product front and center"},{"id":"b","title":"Lifestyle"}]` +
		"\n```"

	ex := Extract(resp, "", nil)

	require.Len(t, ex.Ideas, 2)
	assert.Equal(t, "Hero shot", ex.Ideas[0].Title)
	assert.Equal(t, "b", ex.Ideas[1].ID)
	assert.Equal(t, "Pick a direction:", ex.Text)
}

func TestInferFormat(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"make me some Stories for the launch", "stories"},
		{"a vertical clip", "stories"},
		{"a reel please", "stories"},
		{"three feed posts", "feed"},
		{"", "feed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferFormat(tt.text), tt.text)
	}
}

func TestParseDescriptors(t *testing.T) {
	t.Run("array block", func(t *testing.T) {
		raw := "```json-assets\n" +
			`[{"name":"Hero","type":"image","dimensions":"1080x1080","prompt":"p1"},{"name":"Lifestyle","type":"image","prompt":"p2"}]` +
			"\n```"
		got := ParseDescriptors(raw)
		require.Len(t, got, 2)
		assert.Equal(t, "Hero", got[0].Name)
	})

	t.Run("single object normalized to one-element slice", func(t *testing.T) {
		raw := "```json-assets\n" +
			`{"name":"Solo","type":"video","prompt":"a ship at dawn"}` +
			"\n```"
		got := ParseDescriptors(raw)
		require.Len(t, got, 1)
		assert.Equal(t, "Solo", got[0].Name)
	})

	t.Run("bare JSON without fence", func(t *testing.T) {
		raw := `[{"name":"Bare","type":"image","prompt":"p"}]`
		got := ParseDescriptors(raw)
		require.Len(t, got, 1)
	})

	t.Run("absent block yields nil", func(t *testing.T) {
		assert.Nil(t, ParseDescriptors("no structured content here"))
	})
}
