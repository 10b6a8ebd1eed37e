package shape

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleShapes() []*Shape {
	var out []*Shape
	for _, k := range Kinds() {
		s := New(k, Pt(1.5, -2.25), Pt(120.125, 80))
		s.Rotation = 7.0685834705770345
		s.Style.Color = ARGB(0xcc, 0x12, 0x34, 0x56)
		s.Style.StrokeWidth = 3.5
		s.Style.Mode = ModeFill
		s.Style.Opacity = 0.35
		s.Style.FontSize = 22
		s.Style.FontStyle = FontItalic
		s.Style.FontWeight = WeightBold
		s.SetPolygonSides(9)
		if k == KindFreehand {
			s.Path = append(s.Path, Pt(1.5, -2.25), Pt(60.75, 40.1), Pt(120.125, 80))
		}
		if k != KindLine {
			s.InitLabels()
			s.SetLabel("Extra", "label with ünïcode")
		}
		out = append(out, s)
	}
	// empty label maps and an empty freehand path
	out = append(out, New(KindCircle, Pt(0, 0), Pt(0, 0)), New(KindFreehand, Pt(3, 3), Pt(3, 3)))
	return out
}

func TestRecordRoundTrip(t *testing.T) {
	for _, s := range sampleShapes() {
		got, err := FromRecord(0, s.ToRecord())
		require.NoError(t, err)
		assert.Equal(t, s, got, s.Kind.String())
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	shapes := sampleShapes()
	data, err := Marshal(shapes)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, got, len(shapes))
	for i := range shapes {
		assert.Equal(t, shapes[i], got[i], shapes[i].Kind.String())
	}
}

func TestRecordWireNames(t *testing.T) {
	s := New(KindLShape, Pt(1, 2), Pt(3, 4))
	data, err := json.Marshal(s.ToRecord())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"start", "end", "type", "texts", "textPositions", "color", "strokeWidth",
		"mode", "fontSize", "fontStyle", "fontWeight", "rotation", "opacity", "polygonSides"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "pathPoints")
	assert.Equal(t, "lShape", raw["type"])
	assert.Equal(t, "stroke", raw["mode"])
	assert.Equal(t, map[string]any{"dx": 1.0, "dy": 2.0}, raw["start"])
	assert.Equal(t, float64(0xff000000), raw["color"])
}

func TestFromRecordDefaults(t *testing.T) {
	shapes, err := Unmarshal([]byte(`[{"start":{"dx":0,"dy":0},"end":{"dx":10,"dy":10},"type":"polygon"}]`))
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	s := shapes[0]
	assert.Equal(t, 1.0, s.Style.Opacity)
	assert.Equal(t, 5, s.PolygonSides)
	assert.NotEmpty(t, s.ID)
	assert.NotNil(t, s.Texts)
	assert.NotNil(t, s.TextPositions)
	assert.Nil(t, s.Path)
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	cases := map[string]struct {
		doc   string
		field string
		index int
	}{
		"missing type":  {`[{"start":{"dx":0,"dy":0},"end":{"dx":1,"dy":1}}]`, "type", 0},
		"unknown type":  {`[{"start":{"dx":0,"dy":0},"end":{"dx":1,"dy":1},"type":"blob"}]`, "type", 0},
		"missing start": {`[{"end":{"dx":1,"dy":1},"type":"line"}]`, "start", 0},
		"missing end":   {`[{"start":{"dx":1,"dy":1},"type":"line"},{"start":{"dx":1,"dy":1},"type":"line"}]`, "end", 0},
		"bad mode":      {`[{"start":{"dx":1,"dy":1},"end":{"dx":1,"dy":1},"type":"line"},{"start":{"dx":1,"dy":1},"end":{"dx":1,"dy":1},"type":"line","mode":"hatched"}]`, "mode", 1},
		"not json":      {`{"shapes":`, "", -1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			shapes, err := Unmarshal([]byte(tc.doc))
			require.Error(t, err)
			assert.Nil(t, shapes)

			var derr *DeserializationError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tc.field, derr.Field)
			assert.Equal(t, tc.index, derr.Index)
		})
	}
}
