package shape

// Kind selects which geometric primitive a Shape represents.
type Kind int

const (
	KindLine Kind = iota
	KindRectangle
	KindTriangle
	KindCircle
	KindFreehand
	KindLShape
	KindTShape
	KindUShape
	KindBoxShape
	KindArrow
	KindStar
	KindPolygon
	KindDimension
	KindText
)

var kindNames = [...]string{
	KindLine:      "line",
	KindRectangle: "rectangle",
	KindTriangle:  "triangle",
	KindCircle:    "circle",
	KindFreehand:  "freehand",
	KindLShape:    "lShape",
	KindTShape:    "tShape",
	KindUShape:    "uShape",
	KindBoxShape:  "boxShape",
	KindArrow:     "arrow",
	KindStar:      "star",
	KindPolygon:   "polygon",
	KindDimension: "dimension",
	KindText:      "text",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// Straight reports whether the kind is drawn between two endpoints, as
// opposed to filling a bounding box.
func (k Kind) Straight() bool {
	switch k {
	case KindLine, KindArrow, KindDimension:
		return true
	}
	return false
}

// ParseKind maps a serialized kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// Handle identifies one of the four resize corners of a shape's bounds.
type Handle int

const (
	HandleNone Handle = iota - 1
	HandleTopLeft
	HandleTopRight
	HandleBottomRight
	HandleBottomLeft
)

// Handles lists the four resize corners.
var Handles = [4]Handle{HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft}
