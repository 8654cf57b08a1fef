package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacement(t *testing.T) {
	// 1000x1000 base, 2:1 logo, scale 0.2, padding 20.
	opts := Options{Scale: 0.2, Opacity: 1, Padding: 20}

	t.Run("bottom-right", func(t *testing.T) {
		opts.Anchor = AnchorBottomRight
		r := Placement(1000, 1000, 200, 100, opts)
		assert.Equal(t, 200, r.Dx())
		assert.Equal(t, 100, r.Dy())
		assert.Equal(t, image.Pt(780, 880), r.Min)
	})

	t.Run("center has same size, different origin", func(t *testing.T) {
		opts.Anchor = AnchorCenter
		r := Placement(1000, 1000, 200, 100, opts)
		assert.Equal(t, 200, r.Dx())
		assert.Equal(t, 100, r.Dy())
		assert.Equal(t, image.Pt(400, 450), r.Min)
	})

	t.Run("top-left", func(t *testing.T) {
		opts.Anchor = AnchorTopLeft
		r := Placement(1000, 1000, 200, 100, opts)
		assert.Equal(t, image.Pt(20, 20), r.Min)
	})

	t.Run("aspect preserved for non-2:1 logos", func(t *testing.T) {
		opts.Anchor = AnchorBottomRight
		r := Placement(1000, 1000, 400, 400, opts)
		assert.Equal(t, 200, r.Dx())
		assert.Equal(t, 200, r.Dy())
	})
}

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestOverlay(t *testing.T) {
	base := solid(100, 100, color.RGBA{R: 255, A: 255})
	logo := solid(40, 20, color.RGBA{B: 255, A: 255})

	opts := Options{Anchor: AnchorBottomRight, Scale: 0.2, Opacity: 1, Padding: 10}

	out, err := Overlay(base, logo, opts)
	require.NoError(t, err)

	// Overlay is 20x10 at (70, 80): inside is logo blue, outside base red.
	_, _, bIn, _ := out.At(75, 85).RGBA()
	assert.NotZero(t, bIn, "inside overlay should carry logo color")
	rOut, _, bOut, _ := out.At(10, 10).RGBA()
	assert.NotZero(t, rOut)
	assert.Zero(t, bOut, "outside overlay is untouched base")
}

func TestOverlay_Deterministic(t *testing.T) {
	base := solid(64, 64, color.RGBA{G: 200, A: 255})
	logo := solid(16, 8, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	opts := Options{Anchor: AnchorCenter, Scale: 0.5, Opacity: 0.6}

	a, err := Overlay(base, logo, opts)
	require.NoError(t, err)
	b, err := Overlay(base, logo, opts)
	require.NoError(t, err)

	assert.Equal(t, a.(*image.RGBA).Pix, b.(*image.RGBA).Pix)
}

func TestOverlay_Validation(t *testing.T) {
	base := solid(10, 10, color.RGBA{A: 255})
	logo := solid(4, 2, color.RGBA{A: 255})

	_, err := Overlay(base, logo, Options{Scale: 0, Opacity: 1})
	assert.Error(t, err)

	_, err = Overlay(base, logo, Options{Scale: 0.5, Opacity: 1.5})
	assert.Error(t, err)

	_, err = Overlay(nil, logo, Options{Scale: 0.5, Opacity: 1})
	assert.Error(t, err)
}
