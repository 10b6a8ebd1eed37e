package render

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"vecsketch/internal/shape"
)

type faceKey struct {
	size   float64
	italic bool
	bold   bool
	mono   bool
}

// fonts parses the Go font family once and caches faces per size.
type fonts struct {
	regular, bold, italic, boldItalic, mono *truetype.Font
	faces                                   map[faceKey]font.Face
}

func loadFonts() (*fonts, error) {
	parse := func(name string, data []byte) (*truetype.Font, error) {
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
		}
		return f, nil
	}
	fs := &fonts{faces: make(map[faceKey]font.Face)}
	var err error
	if fs.regular, err = parse("regular", goregular.TTF); err != nil {
		return nil, err
	}
	if fs.bold, err = parse("bold", gobold.TTF); err != nil {
		return nil, err
	}
	if fs.italic, err = parse("italic", goitalic.TTF); err != nil {
		return nil, err
	}
	if fs.boldItalic, err = parse("bold italic", gobolditalic.TTF); err != nil {
		return nil, err
	}
	if fs.mono, err = parse("mono", gomono.TTF); err != nil {
		return nil, err
	}
	return fs, nil
}

// face returns the face for a label style. Weights of 600 and above are
// drawn bold.
func (fs *fonts) face(st shape.Style) font.Face {
	return fs.get(faceKey{
		size:   st.FontSize,
		italic: st.FontStyle == shape.FontItalic,
		bold:   st.FontWeight >= 600,
	})
}

func (fs *fonts) monoFace(size float64) font.Face {
	return fs.get(faceKey{size: size, mono: true})
}

func (fs *fonts) get(k faceKey) font.Face {
	if f, ok := fs.faces[k]; ok {
		return f
	}
	ttf := fs.regular
	switch {
	case k.mono:
		ttf = fs.mono
	case k.bold && k.italic:
		ttf = fs.boldItalic
	case k.bold:
		ttf = fs.bold
	case k.italic:
		ttf = fs.italic
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    k.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	fs.faces[k] = f
	return f
}
