package editor

// Tool is the active pointer tool.
type Tool int

const (
	ToolDraw Tool = iota
	ToolSelect
	ToolPan
	ToolMeasure
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolDraw:
		return "draw"
	case ToolSelect:
		return "select"
	case ToolPan:
		return "pan"
	case ToolMeasure:
		return "measure"
	case ToolEraser:
		return "eraser"
	}
	return "unknown"
}

// InteractionMode restricts what a select gesture may do to the selection.
type InteractionMode int

const (
	InteractAny InteractionMode = iota
	InteractMove
	InteractResize
)

func (m InteractionMode) String() string {
	switch m {
	case InteractMove:
		return "move"
	case InteractResize:
		return "resize"
	}
	return "any"
}

// Event tells subscribers what kind of change bumped the revision.
type Event int

const (
	EventChanged Event = iota
	EventSelection
	EventSuggestions
	EventTool
)
