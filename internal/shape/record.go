package shape

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Offset is the serialized form of a Point.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func toOffset(p Point) Offset  { return Offset{DX: p.X, DY: p.Y} }
func (o Offset) Point() Point { return Point{X: o.DX, Y: o.DY} }

// Record is the flat serialized form of a Shape. Pointer fields distinguish
// absent values from zero values on decode.
type Record struct {
	ID            string            `json:"id,omitempty"`
	Start         *Offset           `json:"start"`
	End           *Offset           `json:"end"`
	Type          string            `json:"type"`
	Texts         map[string]string `json:"texts"`
	TextPositions map[string]Offset `json:"textPositions"`
	PathPoints    []Offset          `json:"pathPoints,omitempty"`
	Color         *uint32           `json:"color,omitempty"`
	StrokeWidth   *float64          `json:"strokeWidth,omitempty"`
	Mode          string            `json:"mode,omitempty"`
	FontSize      *float64          `json:"fontSize,omitempty"`
	FontStyle     int               `json:"fontStyle"`
	FontWeight    *int              `json:"fontWeight,omitempty"`
	Rotation      float64           `json:"rotation"`
	Opacity       *float64          `json:"opacity,omitempty"`
	PolygonSides  *int              `json:"polygonSides,omitempty"`
}

// DeserializationError reports a malformed shape record.
type DeserializationError struct {
	// Index of the offending record, -1 when the document itself is invalid.
	Index  int
	Field  string
	Reason string
}

func (e *DeserializationError) Error() string {
	if e.Index < 0 {
		return "invalid shape document: " + e.Reason
	}
	if e.Field == "" {
		return fmt.Sprintf("shape record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("shape record %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// ToRecord converts s to its serialized form.
func (s *Shape) ToRecord() Record {
	start, end := toOffset(s.Start), toOffset(s.End)
	color := uint32(s.Style.Color)
	width := s.Style.StrokeWidth
	fontSize := s.Style.FontSize
	weight := int(s.Style.FontWeight)
	opacity := s.Style.Opacity
	sides := s.PolygonSides
	r := Record{
		ID:            s.ID,
		Start:         &start,
		End:           &end,
		Type:          s.Kind.String(),
		Texts:         make(map[string]string, len(s.Texts)),
		TextPositions: make(map[string]Offset, len(s.TextPositions)),
		Color:         &color,
		StrokeWidth:   &width,
		Mode:          s.Style.Mode.String(),
		FontSize:      &fontSize,
		FontStyle:     int(s.Style.FontStyle),
		FontWeight:    &weight,
		Rotation:      s.Rotation,
		Opacity:       &opacity,
		PolygonSides:  &sides,
	}
	for k, v := range s.Texts {
		r.Texts[k] = v
	}
	for k, v := range s.TextPositions {
		r.TextPositions[k] = toOffset(v)
	}
	if s.Path != nil {
		r.PathPoints = make([]Offset, len(s.Path))
		for i, p := range s.Path {
			r.PathPoints[i] = toOffset(p)
		}
	}
	return r
}

// FromRecord rebuilds a shape. index is only used to annotate errors.
func FromRecord(index int, r Record) (*Shape, error) {
	if r.Type == "" {
		return nil, &DeserializationError{Index: index, Field: "type", Reason: "missing"}
	}
	kind, ok := ParseKind(r.Type)
	if !ok {
		return nil, &DeserializationError{Index: index, Field: "type", Reason: fmt.Sprintf("unknown kind %q", r.Type)}
	}
	if r.Start == nil {
		return nil, &DeserializationError{Index: index, Field: "start", Reason: "missing"}
	}
	if r.End == nil {
		return nil, &DeserializationError{Index: index, Field: "end", Reason: "missing"}
	}

	s := New(kind, r.Start.Point(), r.End.Point())
	if r.ID != "" {
		s.ID = r.ID
	} else {
		s.ID = uuid.NewString()
	}
	for k, v := range r.Texts {
		s.Texts[k] = v
	}
	for k, v := range r.TextPositions {
		s.TextPositions[k] = v.Point()
	}
	if kind == KindFreehand {
		s.Path = make([]Point, len(r.PathPoints))
		for i, o := range r.PathPoints {
			s.Path[i] = o.Point()
		}
	}

	if r.Color != nil {
		s.Style.Color = Color(*r.Color)
	}
	if r.StrokeWidth != nil {
		s.Style.StrokeWidth = *r.StrokeWidth
	}
	if r.Mode != "" {
		mode, ok := ParsePaintMode(r.Mode)
		if !ok {
			return nil, &DeserializationError{Index: index, Field: "mode", Reason: fmt.Sprintf("unknown mode %q", r.Mode)}
		}
		s.Style.Mode = mode
	}
	if r.FontSize != nil {
		s.Style.FontSize = *r.FontSize
	}
	s.Style.FontStyle = FontStyle(r.FontStyle)
	if r.FontWeight != nil {
		s.Style.FontWeight = FontWeight(*r.FontWeight)
	}
	s.Rotation = r.Rotation
	s.Style.Opacity = 1
	if r.Opacity != nil {
		s.Style.Opacity = *r.Opacity
	}
	if r.PolygonSides != nil {
		s.PolygonSides = *r.PolygonSides
	}
	return s, nil
}

// Marshal encodes shapes as a JSON array of records.
func Marshal(shapes []*Shape) ([]byte, error) {
	records := make([]Record, len(shapes))
	for i, s := range shapes {
		records[i] = s.ToRecord()
	}
	return json.Marshal(records)
}

// Unmarshal decodes a JSON array of records. It returns either every shape
// or an error, never a partial list.
func Unmarshal(data []byte) ([]*Shape, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &DeserializationError{Index: -1, Reason: err.Error()}
	}
	shapes := make([]*Shape, 0, len(records))
	for i, r := range records {
		s, err := FromRecord(i, r)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}
