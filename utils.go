package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
		if output, err := exec.Command("pbpaste").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText drops control characters and normalizes line endings.
func cleanClipboardText(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := strings.ReplaceAll(result.String(), "\r\n", "\n")
	return strings.TrimSpace(strings.ReplaceAll(normalized, "\r", "\n"))
}

// copySelection puts the selected shape on the system clipboard as a record
// array. The internal clipboard keeps working when the system one does not.
func (m *model) copySelection() {
	data, err := m.ed.CopySelection()
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.clipboard = data
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.log.Warn("system clipboard unavailable", "err", err)
	}
	m.successMessage = "Copied"
}

// paste prefers shape records on the system clipboard and falls back to
// the last copy made here.
func (m *model) paste() {
	data := m.clipboard
	if text, err := readClipboardText(); err == nil {
		if text = cleanClipboardText(text); strings.HasPrefix(text, "[") {
			data = []byte(text)
		}
	}
	if len(data) == 0 {
		m.errorMessage = "clipboard is empty"
		return
	}
	if err := m.ed.Paste(data); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "Pasted"
}

// editInput applies a typing key to s. It reports whether the key was
// consumed.
func editInput(s string, msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyBackspace:
		if r := []rune(s); len(r) > 0 {
			return string(r[:len(r)-1]), true
		}
		return s, true
	case tea.KeySpace:
		return s + " ", true
	case tea.KeyRunes:
		return s + string(msg.Runes), true
	}
	return s, false
}

// scanFiles lists files with extension ext in the save directory, or the
// working directory when none is configured.
func (m *model) scanFiles(ext string) {
	m.fileList = []string{}
	m.selectedFileIndex = -1

	dir := m.cfg.SaveDirectory
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return
		}
		dir = wd
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)

	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.filename = trimExt(m.fileList[0])
	}
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
