package shape

import "image/color"

// Color is a packed 32-bit ARGB value.
type Color uint32

func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// NRGBA converts c to a non-premultiplied color, with its alpha further
// scaled by opacity.
func (c Color) NRGBA(opacity float64) color.NRGBA {
	a := float64(c.A()) * clamp01(opacity)
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: uint8(a + 0.5)}
}

// ColorFrom packs any color.Color as ARGB.
func ColorFrom(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ARGB(n.A, n.R, n.G, n.B)
}

// PaintMode selects between outlining and filling a shape.
type PaintMode int

const (
	ModeStroke PaintMode = iota
	ModeFill
)

func (m PaintMode) String() string {
	if m == ModeFill {
		return "fill"
	}
	return "stroke"
}

func ParsePaintMode(s string) (PaintMode, bool) {
	switch s {
	case "stroke":
		return ModeStroke, true
	case "fill":
		return ModeFill, true
	}
	return ModeStroke, false
}

type FontStyle int

const (
	FontNormal FontStyle = iota
	FontItalic
)

// FontWeight uses the CSS numeric scale.
type FontWeight int

const (
	WeightNormal FontWeight = 400
	WeightBold   FontWeight = 700
)

// Style holds the visual attributes shared by every kind.
type Style struct {
	Color       Color
	StrokeWidth float64
	Mode        PaintMode
	Opacity     float64
	FontSize    float64
	FontStyle   FontStyle
	FontWeight  FontWeight
}

func DefaultStyle() Style {
	return Style{
		Color:       ARGB(0xff, 0, 0, 0),
		StrokeWidth: 2,
		Mode:        ModeStroke,
		Opacity:     1,
		FontSize:    16,
		FontStyle:   FontNormal,
		FontWeight:  WeightNormal,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampOpacity limits v to the 0..1 range.
func ClampOpacity(v float64) float64 {
	return clamp01(v)
}
