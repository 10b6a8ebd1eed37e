package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vecsketch/internal/editor"
	"vecsketch/internal/shape"
)

func main() {
	cfg := defaultConfig()
	if path, err := configPath(); err == nil {
		loaded, err := loadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vecsketch: %v (using defaults)\n", err)
		}
		cfg = loaded
	}

	logger, closer, err := cfg.newLogger()
	if err != nil {
		log.Fatal(err)
	}

	sched := &teaScheduler{}
	m := newModel(cfg, logger, sched)
	if len(os.Args) > 1 {
		m.openDocument(os.Args[1])
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	sched.send = p.Send
	_, err = p.Run()
	closer.Close()
	if err != nil {
		log.Fatal(err)
	}
}

// newModel builds the application state. A nil sched disables
// hold-to-recognize.
func newModel(cfg *Config, logger *slog.Logger, sched editor.Scheduler) model {
	opts := []editor.Option{editor.WithLogger(logger)}
	if sched != nil {
		opts = append(opts, editor.WithScheduler(sched))
	}
	ed := editor.New(cfg.editorConfig(), opts...)

	m := model{
		ed:                ed,
		cfg:               cfg,
		log:               logger,
		doc:               &document{},
		frame:             &frameCache{},
		palette:           cfg.palette(),
		selectedFileIndex: -1,
	}
	if col, err := parseColor(cfg.StrokeColor); err == nil {
		ed.SetStrokeColor(col)
		if i := slices.Index(m.palette, col); i >= 0 {
			m.colorIndex = i
		}
	}
	m.markSaved("")
	return m
}

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	dimFg     = lipgloss.Color("#6B7280")
	accentFg  = lipgloss.Color("#7C3AED")
	errorFg   = lipgloss.Color("#E03131")
	successFg = lipgloss.Color("#2F9E44")

	statusStyle  = lipgloss.NewStyle().Foreground(baseFg)
	dimStyle     = lipgloss.NewStyle().Foreground(dimFg)
	accentStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorFg)
	successStyle = lipgloss.NewStyle().Foreground(successFg)
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case holdMsg:
		msg.fire()
		return m, nil

	case tea.MouseMsg:
		if m.help || m.mode != ModeNormal {
			return m, nil
		}
		m.handleMouse(tea.MouseEvent(msg))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}
		switch m.mode {
		case ModeConfirm:
			return m.handleConfirm(msg.String())
		case ModeFileInput:
			m.handleFileInput(msg)
			return m, nil
		case ModeLabelInput:
			m.handleLabelInput(msg)
			return m, nil
		}
		return m.handleNormalKey(msg.String())
	}
	return m, nil
}

func (m *model) canvasHeight() int {
	return max(m.height-chromeRows, 1)
}

// screenPoint returns the canvas-space screen position of a cell center.
func screenPoint(x, y int) shape.Point {
	return shape.Pt((float64(x)+0.5)*cellWidth, (float64(y)+0.5)*cellHeight)
}

func (m *model) handleMouse(ev tea.MouseEvent) {
	p := screenPoint(ev.X, ev.Y)
	switch {
	case ev.Button == tea.MouseButtonWheelUp:
		m.zoomAt(p, zoomStep)
	case ev.Button == tea.MouseButtonWheelDown:
		m.zoomAt(p, 1/zoomStep)
	case ev.Action == tea.MouseActionPress && ev.Button == tea.MouseButtonLeft:
		if ev.Y >= m.canvasHeight() {
			m.clickChrome(ev.X, ev.Y-m.canvasHeight())
			return
		}
		m.clearMessages()
		m.dragging = true
		m.ed.Start(p)
	case ev.Action == tea.MouseActionMotion && m.dragging:
		m.ed.Update(p)
	case ev.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.ed.End()
	}
}

// clickChrome handles a press on the rows below the canvas. Row 0 is the
// palette bar with swatchWidth-cell swatches from the left edge.
func (m *model) clickChrome(x, row int) {
	if row != 0 {
		return
	}
	if i := x / swatchWidth; i < len(m.palette) {
		m.setColor(i)
	}
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		m.helpScroll = min(m.helpScroll+1, max(len(helpLines)-1, 0))
	case "k", "up":
		m.helpScroll = max(m.helpScroll-1, 0)
	}
}

func (m model) handleNormalKey(key string) (tea.Model, tea.Cmd) {
	m.clearMessages()
	switch key {
	case "q":
		if m.cfg.Confirmations && m.dirty() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.help = true
		m.helpScroll = 0
	case "ctrl+l":
		m.frame.invalidate()
		return m, tea.ClearScreen
	case "esc":
		m.ed.ClearSelection()
		m.ed.DismissSuggestions()

	case "d":
		m.ed.SetTool(editor.ToolDraw)
	case "s":
		m.ed.SetTool(editor.ToolSelect)
	case "p":
		m.ed.SetTool(editor.ToolPan)
	case "m":
		m.ed.SetTool(editor.ToolMeasure)
	case "e":
		m.ed.SetTool(editor.ToolEraser)
	case "[":
		m.cycleKind(-1)
	case "]":
		m.cycleKind(1)
	case "M":
		m.ed.SetInteractionMode((m.ed.InteractionMode() + 1) % 3)

	case "u":
		m.undo()
	case "ctrl+r", "U":
		m.redo()

	case "r":
		m.withSelection(m.ed.Rotate)
	case "h":
		m.withSelection(m.ed.FlipHorizontal)
	case "v":
		m.withSelection(m.ed.FlipVertical)
	case "+", "=":
		m.withSelection(m.ed.LayerUp)
	case "-":
		m.withSelection(m.ed.LayerDown)
	case "D":
		m.withSelection(m.ed.Duplicate)
	case "x":
		if m.ed.Selected() == nil {
			m.errorMessage = editor.ErrNoSelection.Error()
		} else if m.cfg.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDelete
		} else {
			m.ed.Delete()
		}
	case "y":
		m.copySelection()
	case "P":
		m.paste()
	case "1", "2", "3":
		m.acceptSuggestion(int(key[0] - '1'))
	case "t":
		m.startLabelInput()

	case "c":
		m.setColor((m.colorIndex + 1) % len(m.palette))
	case "f":
		if m.currentStyle().Mode == shape.ModeFill {
			m.ed.SetDrawMode(shape.ModeStroke)
		} else {
			m.ed.SetDrawMode(shape.ModeFill)
		}
	case ",":
		m.ed.SetStrokeWidth(max(m.currentStyle().StrokeWidth-1, 1))
	case ".":
		m.ed.SetStrokeWidth(m.currentStyle().StrokeWidth + 1)
	case "{":
		m.ed.SetOpacity(m.currentStyle().Opacity - 0.1)
	case "}":
		m.ed.SetOpacity(m.currentStyle().Opacity + 0.1)
	case "<":
		m.ed.SetFontSize(max(m.currentStyle().FontSize-2, 4))
	case ">":
		m.ed.SetFontSize(m.currentStyle().FontSize + 2)
	case "i":
		if m.currentStyle().FontStyle == shape.FontItalic {
			m.ed.SetFontStyle(shape.FontNormal)
		} else {
			m.ed.SetFontStyle(shape.FontItalic)
		}
	case "b":
		if m.currentStyle().FontWeight >= shape.WeightBold {
			m.ed.SetFontWeight(shape.WeightNormal)
		} else {
			m.ed.SetFontWeight(shape.WeightBold)
		}
	case "(":
		m.ed.SetPolygonSides(m.currentSides() - 1)
	case ")":
		m.ed.SetPolygonSides(m.currentSides() + 1)

	case "g":
		m.ed.SetSnapEnabled(!m.ed.SnapEnabled())
	case "G":
		m.ed.SetShowGrid(!m.ed.Config().ShowGrid)
	case "z":
		m.zoomAt(m.screenCenter(), zoomStep)
	case "Z":
		m.zoomAt(m.screenCenter(), 1/zoomStep)
	case "0":
		m.resetView()
	case "up", "down", "left", "right", "shift+up", "shift+down", "shift+left", "shift+right":
		m.handlePan(key, m.getMoveSpeed(key))

	case "w":
		m.startFileOp(FileOpSave)
	case "o":
		if m.cfg.Confirmations && m.dirty() {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDiscardChanges
			return m, nil
		}
		m.startFileOp(FileOpOpen)
	case "E":
		m.startFileOp(FileOpExportPNG)
	case "T":
		m.startFileOp(FileOpExportTXT)
	}
	return m, nil
}

func (m model) handleConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmDelete:
			m.ed.Delete()
		case ConfirmOverwriteFile:
			m.writeFile(m.fileOp, m.pendingPath)
		case ConfirmDiscardChanges:
			m.startFileOp(FileOpOpen)
		}
		m.pendingPath = ""
	case "n", "N", "esc":
		m.mode = ModeNormal
		m.pendingPath = ""
	}
	return m, nil
}

// withSelection runs op, reporting an error when nothing is selected.
func (m *model) withSelection(op func()) {
	if m.ed.Selected() == nil {
		m.errorMessage = editor.ErrNoSelection.Error()
		return
	}
	op()
}

// currentStyle is the style the style keys adjust: the selection's when
// there is one, otherwise the style for new shapes.
func (m *model) currentStyle() shape.Style {
	if s := m.ed.Selected(); s != nil {
		return s.Style
	}
	return m.ed.Style()
}

func (m *model) currentSides() int {
	if s := m.ed.Selected(); s != nil && s.Kind == shape.KindPolygon {
		return s.PolygonSides
	}
	return m.ed.PolygonSides()
}

func (m *model) cycleKind(step int) {
	kinds := shape.Kinds()
	i := slices.Index(kinds, m.ed.Kind())
	m.ed.SetKind(kinds[(i+step+len(kinds))%len(kinds)])
}

func (m *model) setColor(i int) {
	if i < 0 || i >= len(m.palette) {
		return
	}
	m.colorIndex = i
	m.ed.SetStrokeColor(m.palette[i])
}

func (m *model) acceptSuggestion(i int) {
	suggestions := m.ed.Suggestions()
	if i >= len(suggestions) {
		m.errorMessage = fmt.Sprintf("no suggestion %d", i+1)
		return
	}
	m.ed.AcceptSuggestion(suggestions[i])
	m.successMessage = "Replaced with " + suggestions[i].String()
}

// labelKeys lists the anchors of s that can be edited, sorted by name.
func labelKeys(s *shape.Shape) []string {
	var keys []string
	for key := range s.Texts {
		keys = append(keys, key)
	}
	for key := range s.DefaultAnchors() {
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

func (m *model) startLabelInput() {
	s := m.ed.Selected()
	if s == nil {
		m.errorMessage = editor.ErrNoSelection.Error()
		return
	}
	keys := labelKeys(s)
	m.labelKey = keys[0]
	if slices.Contains(keys, shape.AnchorCenter) {
		m.labelKey = shape.AnchorCenter
	}
	m.labelText = s.Texts[m.labelKey]
	m.mode = ModeLabelInput
}

func (m *model) handleLabelInput(msg tea.KeyMsg) {
	s := m.ed.Selected()
	if s == nil {
		m.mode = ModeNormal
		return
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
	case tea.KeyTab:
		keys := labelKeys(s)
		i := slices.Index(keys, m.labelKey)
		m.labelKey = keys[(i+1)%len(keys)]
		m.labelText = s.Texts[m.labelKey]
	case tea.KeyEnter:
		m.mode = ModeNormal
		if strings.TrimSpace(m.labelText) == "" {
			m.ed.RemoveLabel(m.labelKey)
			return
		}
		m.ed.SetLabel(m.labelKey, m.labelText)
	default:
		m.labelText, _ = editInput(m.labelText, msg)
	}
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	width := max(m.width, 1)
	lines := m.frame.render(m.ed.Scene(), width, m.canvasHeight())

	var result strings.Builder
	result.WriteString(strings.Join(lines, "\n"))
	result.WriteString("\n")
	result.WriteString(m.paletteBar(width))
	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(m.statusLine()))
	return result.String()
}

const swatchWidth = 3

func (m model) paletteBar(width int) string {
	var b strings.Builder
	for i, c := range m.palette {
		b.WriteString(colorStyle(c).Render("██"))
		if i == m.colorIndex {
			b.WriteString(accentStyle.Render("▔"))
		} else {
			b.WriteString(" ")
		}
	}

	st := m.currentStyle()
	parts := []string{
		st.Mode.String(),
		fmt.Sprintf("width %.0f", st.StrokeWidth),
		fmt.Sprintf("opacity %.0f%%", st.Opacity*100),
		fmt.Sprintf("font %.0f", st.FontSize),
	}
	if st.FontStyle == shape.FontItalic {
		parts = append(parts, "italic")
	}
	if st.FontWeight >= shape.WeightBold {
		parts = append(parts, "bold")
	}
	if m.ed.Kind() == shape.KindPolygon {
		parts = append(parts, fmt.Sprintf("sides %d", m.currentSides()))
	}
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(strings.Join(parts, " · ")))

	if suggestions := m.ed.Suggestions(); len(suggestions) > 0 {
		var names []string
		for i, k := range suggestions[:min(len(suggestions), maxSuggest)] {
			names = append(names, fmt.Sprintf("%d=%s", i+1, k))
		}
		b.WriteString(" ")
		b.WriteString(accentStyle.Render("Looks like: " + strings.Join(names, " ")))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

func (m model) statusLine() string {
	switch m.mode {
	case ModeLabelInput:
		return statusStyle.Render(fmt.Sprintf("Mode: LABEL | %s: %s_ | Tab=next anchor, Enter=confirm, Esc=cancel", m.labelKey, m.labelText))
	case ModeFileInput:
		var opStr string
		switch m.fileOp {
		case FileOpSave:
			opStr = "Save"
		case FileOpOpen:
			opStr = "Open"
		case FileOpExportPNG:
			opStr = "Export PNG"
		case FileOpExportTXT:
			opStr = "Export TXT"
		}
		hint := "Enter=confirm, Esc=cancel"
		if m.fileOp == FileOpOpen {
			hint = "↑/↓=navigate list, Type=enter name, " + hint
		}
		line := fmt.Sprintf("Mode: FILE | %s filename: %s | %s", opStr, m.filename, hint)
		if m.errorMessage != "" {
			return errorStyle.Render("ERROR: "+m.errorMessage) + " " + statusStyle.Render(line)
		}
		return statusStyle.Render(line)
	case ModeConfirm:
		var message string
		switch m.confirmAction {
		case ConfirmQuit:
			message = "Quit with unsaved changes? (y/n)"
		case ConfirmDelete:
			message = "Delete the selected shape? (y/n)"
		case ConfirmOverwriteFile:
			message = fmt.Sprintf("File %s already exists. Overwrite? (y/n)", filepath.Base(m.pendingPath))
		case ConfirmDiscardChanges:
			message = "Discard unsaved changes? (y/n)"
		}
		return statusStyle.Render("Mode: CONFIRM | " + message)
	}

	status := fmt.Sprintf("Mode: %s", m.modeString())
	if m.ed.Tool() == editor.ToolSelect && m.ed.InteractionMode() != editor.InteractAny {
		status += " (" + m.ed.InteractionMode().String() + " only)"
	}
	status += fmt.Sprintf(" | Zoom %.0f%%", m.ed.Scale()*100)
	if m.ed.SnapEnabled() {
		status += " | Snap"
	}
	if s := m.ed.Selected(); s != nil {
		status += " | Selected: " + s.Kind.String()
	}
	if meas, ok := m.ed.Measurement(); ok {
		status += " | Distance: " + meas.Label
	}
	name := "untitled"
	if m.doc.path != "" {
		name = filepath.Base(m.doc.path)
	}
	if m.dirty() {
		name += "*"
	}
	status += " | " + name

	line := statusStyle.Render(status)
	switch {
	case m.errorMessage != "":
		line += " " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		line += " " + successStyle.Render(m.successMessage)
	default:
		line += " " + dimStyle.Render("| ? for help | q to quit")
	}
	return line
}

func (m model) modeString() string {
	tool := strings.ToUpper(m.ed.Tool().String())
	if m.ed.Tool() == editor.ToolDraw {
		return tool + " " + m.ed.Kind().String()
	}
	return tool
}

var helpLines = []string{
	"vecsketch Help",
	"==============",
	"",
	"Drawing with the mouse:",
	"-----------------------",
	"  Drag              Draw, select/move/resize, pan, measure or erase",
	"  Hold still        While drawing freehand, suggest a matching shape",
	"  1/2/3             Replace the stroke with a suggested shape",
	"  Wheel             Zoom about the pointer",
	"",
	"Tools:",
	"------",
	"  d                 Draw (current shape kind)",
	"  [ / ]             Previous / next shape kind",
	"  s                 Select, move and resize",
	"  M                 Cycle select mode: any, move only, resize only",
	"  p                 Pan",
	"  m                 Measure",
	"  e                 Eraser",
	"",
	"Selection:",
	"----------",
	"  r                 Rotate 45°",
	"  h / v             Flip horizontally / vertically",
	"  + / -             Move up / down one layer",
	"  D                 Duplicate",
	"  x                 Delete",
	"  t                 Edit a label (Tab cycles anchors)",
	"  y / P             Copy / paste",
	"  Esc               Clear selection and suggestions",
	"",
	"Style (applies to the selection and new shapes):",
	"------------------------------------------------",
	"  c                 Next palette color (or click a swatch)",
	"  f                 Toggle stroke / fill",
	"  , / .             Thinner / thicker stroke",
	"  { / }             Less / more opacity",
	"  < / >             Smaller / larger font",
	"  i / b             Toggle italic / bold",
	"  ( / )             Fewer / more polygon sides",
	"",
	"View:",
	"-----",
	"  ←/↑/↓/→           Pan (Shift for 2x)",
	"  z / Z             Zoom in / out",
	"  0                 Reset zoom and pan",
	"  g                 Toggle snapping",
	"  G                 Toggle grid",
	"",
	"Files:",
	"------",
	"  w                 Save drawing (.json)",
	"  o                 Open drawing",
	"  E                 Export PNG",
	"  T                 Export terminal view as text",
	"",
	"General:",
	"--------",
	"  u                 Undo",
	"  U / Ctrl+R        Redo",
	"  Ctrl+L            Redraw the screen",
	"  ?                 Toggle this help screen",
	"  q / Ctrl+C        Quit",
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	startLine := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	endLine := min(startLine+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[startLine:endLine], "\n")
	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result + "\n" + dimStyle.Render(statusLine)
}
