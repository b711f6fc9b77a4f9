package history

import (
	"errors"
	"testing"
)

func TestUndoWalksBackToInitial(t *testing.T) {
	h := New(0, 50)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}
	for want := 4; want >= 0; want-- {
		got, err := h.Undo()
		if err != nil {
			t.Fatalf("undo to %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("undo = %d, want %d", got, want)
		}
	}
	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo past start: err = %v", err)
	}
	if h.Current() != 0 {
		t.Fatalf("current = %d after exhausting undo", h.Current())
	}
}

func TestRedoRestoresUndoneState(t *testing.T) {
	h := New("a", 50)
	h.Push("b")
	h.Push("c")
	h.Undo()
	h.Undo()
	got, err := h.Redo()
	if err != nil || got != "b" {
		t.Fatalf("redo = %q, %v", got, err)
	}
	got, _ = h.Redo()
	if got != "c" {
		t.Fatalf("second redo = %q", got)
	}
	if h.CanRedo() {
		t.Fatal("redo stack should be empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := New(0, 50)
	h.Push(1)
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	h.Push(2)
	if h.CanRedo() {
		t.Fatal("new commit must clear redo")
	}
	if _, err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("err = %v", err)
	}
}

func TestCapDropsOldest(t *testing.T) {
	h := New(0, 3)
	for i := 1; i <= 10; i++ {
		h.Push(i)
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	h.Undo()
	h.Undo()
	if h.CanUndo() {
		t.Fatal("should not undo past the oldest kept entry")
	}
	if h.Current() != 8 {
		t.Fatalf("oldest kept = %d, want 8", h.Current())
	}
}
