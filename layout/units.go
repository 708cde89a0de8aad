package layout

import "math"

// This file defines the pixel <-> point conversions used at the font boundary.
//
// The canvas backend works in millimetres. Pages are laid out in pixels and
// rasterized at one dot per millimetre, so one canvas unit is one pixel and a
// font size given in pixels must be handed to the font system in points.

// Conversion constants between pt and canvas units (mm, which equal px here).
const (
	PtToPx = 25.4 / 72.0
	PxToPt = 1.0 / PtToPx
)

// ToPt converts a pixel length to points.
func ToPt(px float64) float64 { return px * PxToPt }

// ToPx converts points to pixels.
func ToPx(pt float64) float64 { return pt * PtToPx }

// CeilPx rounds a fractional pixel extent up to whole pixels, so a measured box
// never cuts into a glyph. Tiny float noise below 1e-6 is ignored.
func CeilPx(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v - 1e-6))
}
