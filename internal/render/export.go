package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"vecsketch/internal/editor"
	"vecsketch/internal/shape"
)

// ExportPadding is the margin around the drawing in canvas units.
const ExportPadding = 10

var ErrNothingToExport = errors.New("nothing to export")

// Extent returns the canvas area covered by shapes, rotation and labels
// included.
func Extent(shapes []*shape.Shape) (shape.Rect, bool) {
	var (
		ext shape.Rect
		ok  bool
	)
	add := func(r shape.Rect) {
		if !ok {
			ext, ok = r, true
			return
		}
		ext = ext.Union(r)
	}
	for _, s := range shapes {
		var pts []shape.Point
		for _, p := range s.Outline() {
			pts = append(pts, p.Points...)
		}
		if r, has := shape.BoundsOf(pts); has {
			add(r)
		} else if s.Kind != shape.KindText {
			add(s.Bounds())
		}
		for key, text := range s.Texts {
			if text != "" {
				add(s.LabelBounds(key))
			}
		}
	}
	return ext, ok
}

// Rasterize draws shapes on a white background at pixelScale pixels per
// canvas unit, cropped to their extent. Grid and decorations are not drawn.
func Rasterize(shapes []*shape.Shape, pixelScale float64) (image.Image, error) {
	r, err := New(DefaultTheme())
	if err != nil {
		return nil, err
	}
	return r.Rasterize(editor.Scene{Shapes: shapes}, pixelScale)
}

// Export writes shapes to w as a PNG.
func Export(w io.Writer, shapes []*shape.Shape, pixelScale float64) error {
	r, err := New(DefaultTheme())
	if err != nil {
		return err
	}
	return r.Export(w, editor.Scene{Shapes: shapes}, pixelScale)
}

// Rasterize renders the shapes of sc cropped to their extent. The view,
// grid and decorations of sc are replaced, so only its shapes and revision
// matter.
func (r *Renderer) Rasterize(sc editor.Scene, pixelScale float64) (image.Image, error) {
	if pixelScale <= 0 || math.IsNaN(pixelScale) || math.IsInf(pixelScale, 0) {
		return nil, fmt.Errorf("invalid pixel scale %v", pixelScale)
	}
	ext, ok := Extent(sc.Shapes)
	if !ok {
		return nil, ErrNothingToExport
	}
	ext = ext.Inflate(ExportPadding)

	flat := editor.Scene{
		Shapes:   sc.Shapes,
		Scale:    pixelScale,
		Offset:   ext.Min.Scale(-pixelScale),
		Revision: sc.Revision,
	}
	w := int(math.Ceil(ext.Width() * pixelScale))
	h := int(math.Ceil(ext.Height() * pixelScale))
	return r.Render(flat, w, h), nil
}

// Export writes the shapes of sc to w as a PNG.
func (r *Renderer) Export(w io.Writer, sc editor.Scene, pixelScale float64) error {
	img, err := r.Rasterize(sc, pixelScale)
	if err != nil {
		return err
	}
	if err := gg.NewContextForImage(img).EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
