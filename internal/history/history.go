// Package history keeps bounded undo and redo stacks of shape-list
// snapshots.
package history

import "vecsketch/internal/shape"

// DefaultMaxDepth is the undo depth used when none is configured.
const DefaultMaxDepth = 50

// Manager holds deep-cloned snapshots of the shape list. History is linear:
// recording a new snapshot discards the redo stack.
type Manager struct {
	undoStack [][]*shape.Shape
	redoStack [][]*shape.Shape
	maxDepth  int
	version   uint64
}

func New(maxDepth int) *Manager {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Manager{maxDepth: maxDepth}
}

// Snapshot deep-clones shapes.
func Snapshot(shapes []*shape.Shape) []*shape.Shape {
	out := make([]*shape.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

// Record pushes a snapshot of current onto the undo stack, evicting the
// oldest entry beyond the maximum depth, and clears the redo stack.
func (m *Manager) Record(current []*shape.Shape) {
	m.version++
	m.undoStack = push(m.undoStack, Snapshot(current), m.maxDepth)
	clear(m.redoStack)
	m.redoStack = m.redoStack[:0]
}

// Undo returns the state to restore, saving current for Redo. ok is false
// when there is nothing to undo.
func (m *Manager) Undo(current []*shape.Shape) (restored []*shape.Shape, ok bool) {
	if len(m.undoStack) == 0 {
		return nil, false
	}
	m.version++
	m.redoStack = push(m.redoStack, Snapshot(current), m.maxDepth)
	m.undoStack, restored = pop(m.undoStack)
	return restored, true
}

// Redo is the mirror of Undo.
func (m *Manager) Redo(current []*shape.Shape) (restored []*shape.Shape, ok bool) {
	if len(m.redoStack) == 0 {
		return nil, false
	}
	m.version++
	m.undoStack = push(m.undoStack, Snapshot(current), m.maxDepth)
	m.redoStack, restored = pop(m.redoStack)
	return restored, true
}

func (m *Manager) CanUndo() bool  { return len(m.undoStack) > 0 }
func (m *Manager) CanRedo() bool  { return len(m.redoStack) > 0 }
func (m *Manager) UndoDepth() int { return len(m.undoStack) }
func (m *Manager) RedoDepth() int { return len(m.redoStack) }
func (m *Manager) MaxDepth() int  { return m.maxDepth }

// Version increases on every Record, Undo and Redo that took effect. It is
// unchanged by Reset, so callers can compare it against a saved value.
func (m *Manager) Version() uint64 { return m.version }

// Reset drops both stacks.
func (m *Manager) Reset() {
	m.undoStack = nil
	m.redoStack = nil
}

func push(stack [][]*shape.Shape, snap []*shape.Shape, maxDepth int) [][]*shape.Shape {
	stack = append(stack, snap)
	if over := len(stack) - maxDepth; over > 0 {
		clear(stack[:over])
		stack = append(stack[:0], stack[over:]...)
	}
	return stack
}

func pop(stack [][]*shape.Shape) ([][]*shape.Shape, []*shape.Shape) {
	last := len(stack) - 1
	top := stack[last]
	stack[last] = nil
	return stack[:last], top
}
