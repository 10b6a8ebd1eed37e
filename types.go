package main

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vecsketch/internal/editor"
	"vecsketch/internal/render"
	"vecsketch/internal/shape"
)

type model struct {
	ed  *editor.Controller
	cfg *Config
	log *slog.Logger
	doc *document

	frame    *frameCache
	renderer *render.Renderer

	width  int
	height int

	mode     Mode
	help     bool
	dragging bool

	helpScroll int

	filename          string
	fileList          []string
	selectedFileIndex int
	fileOp            FileOperation
	pendingPath       string
	confirmAction     ConfirmAction

	labelKey  string
	labelText string

	palette    []shape.Color
	colorIndex int

	clipboard []byte

	errorMessage   string
	successMessage string
}

// document tracks the file behind the canvas. It is shared by every copy
// of the model.
type document struct {
	path         string
	savedVersion uint64
}

func (m *model) dirty() bool {
	return m.ed.History().Version() != m.doc.savedVersion
}

func (m *model) markSaved(path string) {
	m.doc.path = path
	m.doc.savedVersion = m.ed.History().Version()
}

// holdMsg delivers an editor timer callback to the update loop so it runs
// on the same goroutine as every other controller call.
type holdMsg struct {
	fire func()
}

// teaScheduler arms editor timers with time.AfterFunc and posts their
// callbacks back into the program.
type teaScheduler struct {
	send func(tea.Msg)
}

func (s *teaScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, func() {
		if s.send != nil {
			s.send(holdMsg{fire: f})
		}
	})
	return func() { t.Stop() }
}
