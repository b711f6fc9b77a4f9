package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"snaptrace/src/engine"
)

var editKeys = map[fyne.KeyName]engine.Key{
	fyne.KeyReturn:    engine.KeyEnter,
	fyne.KeyEnter:     engine.KeyEnter,
	fyne.KeyEscape:    engine.KeyEscape,
	fyne.KeyBackspace: engine.KeyBackspace,
	fyne.KeyDelete:    engine.KeyDelete,
	fyne.KeyLeft:      engine.KeyLeft,
	fyne.KeyRight:     engine.KeyRight,
	fyne.KeyHome:      engine.KeyHome,
	fyne.KeyEnd:       engine.KeyEnd,
}

func translateKey(name fyne.KeyName) (engine.Key, bool) {
	k, ok := editKeys[name]
	return k, ok
}

func translateButton(b desktop.MouseButton) (engine.Button, bool) {
	switch b {
	case desktop.MouseButtonPrimary:
		return engine.Primary, true
	case desktop.MouseButtonSecondary:
		return engine.Secondary, true
	case desktop.MouseButtonTertiary:
		return engine.Middle, true
	}
	return 0, false
}

func translateMods(m fyne.KeyModifier) engine.Mods {
	var out engine.Mods
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		out |= engine.ModCtrl
	}
	if m&fyne.KeyModifierShift != 0 {
		out |= engine.ModShift
	}
	return out
}

// modifierKey reports which modifier a physical key toggles.
func modifierKey(name fyne.KeyName) (engine.Mods, bool) {
	switch name {
	case desktop.KeyControlLeft, desktop.KeyControlRight, desktop.KeySuperLeft, desktop.KeySuperRight:
		return engine.ModCtrl, true
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		return engine.ModShift, true
	}
	return 0, false
}
