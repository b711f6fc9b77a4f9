package gui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"snaptrace/src/engine"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name fyne.KeyName
		want engine.Key
		ok   bool
	}{
		{fyne.KeyReturn, engine.KeyEnter, true},
		{fyne.KeyEnter, engine.KeyEnter, true},
		{fyne.KeyEscape, engine.KeyEscape, true},
		{fyne.KeyBackspace, engine.KeyBackspace, true},
		{fyne.KeyHome, engine.KeyHome, true},
		{fyne.KeyF1, 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, ok := translateKey(tt.name)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("translateKey(%s) = %v, %v", tt.name, got, ok)
			}
		})
	}
}

func TestTranslateMods(t *testing.T) {
	m := translateMods(fyne.KeyModifierControl | fyne.KeyModifierShift)
	if !m.Ctrl() || !m.Shift() {
		t.Fatalf("mods = %b", m)
	}
	if translateMods(fyne.KeyModifierAlt) != 0 {
		t.Fatal("alt should not map")
	}
}

func TestTranslateButton(t *testing.T) {
	if b, ok := translateButton(desktop.MouseButtonSecondary); !ok || b != engine.Secondary {
		t.Fatalf("secondary = %v, %v", b, ok)
	}
	if _, ok := translateButton(desktop.MouseButton(64)); ok {
		t.Fatal("unknown button accepted")
	}
}

func TestModifierKey(t *testing.T) {
	if m, ok := modifierKey(desktop.KeyControlRight); !ok || m != engine.ModCtrl {
		t.Fatalf("ctrl = %v, %v", m, ok)
	}
	if _, ok := modifierKey(fyne.KeyA); ok {
		t.Fatal("A is not a modifier")
	}
}
