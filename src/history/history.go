// Package history is a bounded linear undo/redo stack of whole-document
// snapshots.
package history

import "errors"

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const DefaultMaxEntries = 50

// History keeps the current state on top of the undo stack, so the stack is
// never empty and the initial state can never be undone.
type History[T any] struct {
	undo       []T
	redo       []T
	maxEntries int
}

// New starts a history whose only entry is initial.
func New[T any](initial T, maxEntries int) *History[T] {
	if maxEntries < 2 {
		maxEntries = DefaultMaxEntries
	}
	return &History[T]{undo: []T{initial}, maxEntries: maxEntries}
}

// Push records a committed state and clears the redo stack. The oldest entry
// is dropped once the cap is exceeded.
func (h *History[T]) Push(state T) {
	h.undo = append(h.undo, state)
	h.redo = nil
	if excess := len(h.undo) - h.maxEntries; excess > 0 {
		h.undo = append([]T(nil), h.undo[excess:]...)
	}
}

// Undo steps back one entry and returns the state to restore.
func (h *History[T]) Undo() (T, error) {
	var zero T
	if len(h.undo) <= 1 {
		return zero, ErrNothingToUndo
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	return h.undo[len(h.undo)-1], nil
}

// Redo re-applies the most recently undone state.
func (h *History[T]) Redo() (T, error) {
	var zero T
	if len(h.redo) == 0 {
		return zero, ErrNothingToRedo
	}
	state := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, state)
	return state, nil
}

func (h *History[T]) CanUndo() bool { return len(h.undo) > 1 }

func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// Current returns the state on top of the undo stack.
func (h *History[T]) Current() T { return h.undo[len(h.undo)-1] }

// Len returns the number of undo entries, including the initial one.
func (h *History[T]) Len() int { return len(h.undo) }

// Reset discards everything and starts again from initial.
func (h *History[T]) Reset(initial T) {
	h.undo = []T{initial}
	h.redo = nil
}
