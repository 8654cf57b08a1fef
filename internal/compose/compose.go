// Package compose performs deterministic pixel-level overlay of a logo
// onto a base image. Pure: no network or persistence side effects.
package compose

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Anchor names the placement corner for the overlay.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// Options controls overlay placement and blending.
type Options struct {
	// Anchor is the placement corner or center.
	Anchor Anchor
	// Scale is the overlay width relative to the base width, (0, 1].
	Scale float64
	// Opacity is the overlay alpha, [0, 1].
	Opacity float64
	// Padding is the edge inset in pixels, ignored for center placement.
	Padding int
}

// Placement computes the overlay rectangle for the given base and logo
// dimensions. Logo aspect ratio is preserved: height derives from the
// scaled width and the logo's original aspect.
func Placement(baseW, baseH, logoW, logoH int, opts Options) image.Rectangle {
	w := int(math.Round(float64(baseW) * opts.Scale))
	h := int(math.Round(float64(w) * float64(logoH) / float64(logoW)))

	var x, y int
	switch opts.Anchor {
	case AnchorTopLeft:
		x, y = opts.Padding, opts.Padding
	case AnchorTopRight:
		x, y = baseW-w-opts.Padding, opts.Padding
	case AnchorBottomLeft:
		x, y = opts.Padding, baseH-h-opts.Padding
	case AnchorCenter:
		x, y = (baseW-w)/2, (baseH-h)/2
	default: // bottom-right
		x, y = baseW-w-opts.Padding, baseH-h-opts.Padding
	}

	return image.Rect(x, y, x+w, y+h)
}

// Overlay flattens logo onto base at the configured anchor, scale, and
// opacity, returning a new image. Same inputs always produce the same
// output.
func Overlay(base, logo image.Image, opts Options) (image.Image, error) {
	if base == nil || logo == nil {
		return nil, errors.New("base and logo images are required")
	}
	if opts.Scale <= 0 || opts.Scale > 1 {
		return nil, errors.New("scale must be in (0, 1]")
	}
	if opts.Opacity < 0 || opts.Opacity > 1 {
		return nil, errors.New("opacity must be in [0, 1]")
	}

	bb := base.Bounds()
	lb := logo.Bounds()
	if lb.Dx() == 0 || lb.Dy() == 0 {
		return nil, errors.New("logo has zero dimensions")
	}

	rect := Placement(bb.Dx(), bb.Dy(), lb.Dx(), lb.Dy(), opts)

	out := image.NewRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))
	draw.Draw(out, out.Bounds(), base, bb.Min, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, lb, xdraw.Over, nil)

	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opts.Opacity * 255))})
	draw.DrawMask(out, rect, scaled, image.Point{}, mask, image.Point{}, draw.Over)

	return out, nil
}
