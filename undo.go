package main

import "fmt"

func (m *model) undo() {
	hist := m.ed.History()
	if !hist.CanUndo() {
		m.errorMessage = "nothing to undo"
		return
	}
	m.ed.Undo()
	m.successMessage = fmt.Sprintf("Undo (%d more)", hist.UndoDepth())
}

func (m *model) redo() {
	hist := m.ed.History()
	if !hist.CanRedo() {
		m.errorMessage = "nothing to redo"
		return
	}
	m.ed.Redo()
	m.successMessage = fmt.Sprintf("Redo (%d more)", hist.RedoDepth())
}
