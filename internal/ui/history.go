package ui

import "github.com/piwi3910/cnc-calculator/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the session parameters at a point in time.
type Snapshot struct {
	Parameters model.ParameterSnapshot
	Label      string // Human-readable description (e.g. "Maximize feedrate")
}

// History keeps bounded undo and redo stacks of parameter snapshots.
// Snapshots are plain values, so nothing needs deep copying.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Push records the state before an edit and discards anything redoable.
// A snapshot equal to the newest one is dropped: re-entering a field's
// current value is not an undo step.
func (h *History) Push(s Snapshot) {
	if top, ok := peek(h.undoStack); ok && top.Parameters == s.Parameters {
		return
	}
	h.undoStack = h.bounded(append(h.undoStack, s))
	h.redoStack = nil
}

// Undo returns the state to restore and files current for Redo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	prev, ok := pop(&h.undoStack)
	if !ok {
		return Snapshot{}, false
	}
	h.redoStack = append(h.redoStack, current)
	return prev, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	next, ok := pop(&h.redoStack)
	if !ok {
		return Snapshot{}, false
	}
	h.undoStack = h.bounded(append(h.undoStack, current))
	return next, true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoLabel names the edit Undo would revert, or "" when there is none.
func (h *History) UndoLabel() string {
	s, _ := peek(h.undoStack)
	return s.Label
}

// RedoLabel names the edit Redo would reapply, or "" when there is none.
func (h *History) RedoLabel() string {
	s, _ := peek(h.redoStack)
	return s.Label
}

// Clear forgets all history, e.g. after the catalog changes.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// bounded drops the oldest entries beyond maxDepth.
func (h *History) bounded(stack []Snapshot) []Snapshot {
	if h.maxDepth > 0 && len(stack) > h.maxDepth {
		return stack[len(stack)-h.maxDepth:]
	}
	return stack
}

func peek(stack []Snapshot) (Snapshot, bool) {
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	return stack[len(stack)-1], true
}

func pop(stack *[]Snapshot) (Snapshot, bool) {
	s, ok := peek(*stack)
	if ok {
		*stack = (*stack)[:len(*stack)-1]
	}
	return s, ok
}

// MakeSnapshot captures p with a label.
func MakeSnapshot(p model.CuttingParameters, label string) Snapshot {
	return Snapshot{
		Parameters: p.Snapshot(),
		Label:      label,
	}
}
