package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"vecsketch/internal/render"
	"vecsketch/internal/shape"
)

func (op FileOperation) ext() string {
	switch op {
	case FileOpExportPNG:
		return pngExt
	case FileOpExportTXT:
		return txtExt
	default:
		return documentExt
	}
}

func (m *model) startFileOp(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.errorMessage = ""
	m.filename = trimExt(filepath.Base(m.doc.path))
	if m.doc.path == "" {
		m.filename = ""
	}
	if op == FileOpOpen {
		m.scanFiles(documentExt)
	}
}

func (m *model) handleFileInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.errorMessage = ""
	case tea.KeyEnter:
		m.submitFile()
	case tea.KeyUp, tea.KeyDown:
		if m.fileOp != FileOpOpen || len(m.fileList) == 0 {
			return
		}
		if msg.Type == tea.KeyUp {
			m.selectedFileIndex = max(m.selectedFileIndex-1, 0)
		} else {
			m.selectedFileIndex = min(m.selectedFileIndex+1, len(m.fileList)-1)
		}
		m.filename = trimExt(m.fileList[m.selectedFileIndex])
	default:
		m.filename, _ = editInput(m.filename, msg)
	}
}

// filePath resolves the typed name for op, adding the extension when it is
// missing.
func (m *model) filePath(op FileOperation) string {
	name := strings.TrimSpace(m.filename)
	if !strings.EqualFold(filepath.Ext(name), op.ext()) {
		name += op.ext()
	}
	if filepath.IsAbs(name) {
		return name
	}
	return m.cfg.GetSavePath(name)
}

func (m *model) submitFile() {
	if strings.TrimSpace(m.filename) == "" {
		m.errorMessage = "filename required"
		return
	}
	path := m.filePath(m.fileOp)

	if m.fileOp == FileOpOpen {
		if m.openDocument(path) {
			m.mode = ModeNormal
		}
		return
	}

	_, err := os.Stat(path)
	exists := err == nil
	if exists && m.cfg.Confirmations && !(m.fileOp == FileOpSave && path == m.doc.path) {
		m.pendingPath = path
		m.mode = ModeConfirm
		m.confirmAction = ConfirmOverwriteFile
		return
	}
	m.mode = ModeNormal
	m.writeFile(m.fileOp, path)
}

// writeFile performs a save or export to path, reporting the outcome in the
// status line. On failure the file prompt is reopened.
func (m *model) writeFile(op FileOperation, path string) {
	var err error
	switch op {
	case FileOpSave:
		err = m.saveDocument(path)
	case FileOpExportPNG:
		err = m.exportPNG(path)
	case FileOpExportTXT:
		err = m.exportVisualTXT(path)
	}
	if err != nil {
		m.log.Error("write failed", "path", path, "err", err)
		m.mode = ModeFileInput
		m.fileOp = op
		m.errorMessage = err.Error()
		return
	}
	m.log.Info("file written", "path", path)
	m.successMessage = "Wrote " + filepath.Base(path)
}

func (m *model) saveDocument(path string) error {
	data, err := m.ed.Save()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	m.markSaved(path)
	return nil
}

// openDocument loads path into the editor. It reports success; on failure
// the drawing is untouched and the error is shown.
func (m *model) openDocument(path string) bool {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		m.errorMessage = "no such file: " + filepath.Base(path)
		return false
	}
	if err != nil {
		m.errorMessage = err.Error()
		return false
	}
	if err := m.ed.Load(data); err != nil {
		var derr *shape.DeserializationError
		if errors.As(err, &derr) {
			m.log.Warn("bad record", "path", path, "index", derr.Index, "err", err)
		}
		m.errorMessage = err.Error()
		return false
	}
	m.markSaved(path)
	if m.renderer != nil {
		m.renderer.Invalidate()
	}
	m.log.Info("document opened", "path", path, "shapes", len(m.ed.Shapes()))
	m.successMessage = "Opened " + filepath.Base(path)
	return true
}

func (m *model) exportPNG(path string) error {
	if m.renderer == nil {
		r, err := render.New(render.DefaultTheme())
		if err != nil {
			return err
		}
		m.renderer = r
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.renderer.Export(file, m.ed.Scene(), m.cfg.ExportScale); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

// exportVisualTXT writes the canvas as it appears in the terminal, without
// grid, selection or other decorations.
func (m *model) exportVisualTXT(filename string) error {
	sc := m.ed.Scene()
	sc.ShowGrid = false
	sc.Selected = nil
	sc.Preview = nil
	sc.Measure = nil
	sc.Eraser = nil

	width := m.width
	if width < 1 {
		width = 80
	}
	height := m.canvasHeight()
	if m.height < 1 {
		height = 24
	}
	rendered := drawScene(sc, width, height).plain()

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	for _, line := range rendered {
		if _, err := fmt.Fprintln(file, strings.TrimRight(line, " ")); err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}
