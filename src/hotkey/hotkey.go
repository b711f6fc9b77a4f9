package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

var ErrEmptyCombo = errors.New("hotkey: empty combination")

// Key is one member of a combination with every rawcode that produces it.
type Key struct {
	Name     string
	Rawcodes []uint16
}

// Combo is a parsed hotkey such as "Ctrl+Alt+S".
type Combo struct {
	Text string
	Keys []Key
}

func (c Combo) String() string { return c.Text }

// Parse turns "Ctrl+Alt+S" into a Combo. Names are case-insensitive and
// win/cmd/super are the same key.
func Parse(text string) (Combo, error) {
	c := Combo{Text: text}
	for _, part := range strings.Split(text, "+") {
		name := canonical(part)
		if name == "" {
			continue
		}
		codes := rawcodes(name)
		if codes == nil {
			return Combo{}, fmt.Errorf("hotkey: unknown key %q in %q", part, text)
		}
		c.Keys = append(c.Keys, Key{Name: name, Rawcodes: codes})
	}
	if len(c.Keys) == 0 {
		return Combo{}, ErrEmptyCombo
	}
	return c, nil
}

func canonical(part string) string {
	name := strings.ToLower(strings.TrimSpace(part))
	switch name {
	case "control":
		return "ctrl"
	case "win", "super", "meta":
		return "cmd"
	case "return":
		return "enter"
	case "escape":
		return "esc"
	case "del":
		return "delete"
	}
	return name
}

// Windows virtual-key codes, which gohook reports as rawcodes.
var specialKeys = map[string][]uint16{
	"ctrl":        {162, 163},
	"alt":         {164, 165},
	"shift":       {160, 161},
	"cmd":         {91, 92},
	"space":       {32},
	"enter":       {13},
	"esc":         {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"insert":      {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pagedown":    {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44},
}

func rawcodes(name string) []uint16 {
	if codes, ok := specialKeys[name]; ok {
		return codes
	}
	if len(name) == 1 {
		switch ch := name[0]; {
		case ch >= 'a' && ch <= 'z':
			return []uint16{uint16('A' + ch - 'a')}
		case ch >= '0' && ch <= '9':
			return []uint16{uint16(ch)}
		}
	}
	if strings.HasPrefix(name, "f") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}
	return nil
}

// chord tracks which members of a Combo are held down.
type chord struct {
	mu      sync.Mutex
	combo   Combo
	pressed []bool
}

func newChord(c Combo) *chord {
	return &chord{combo: c, pressed: make([]bool, len(c.Keys))}
}

func (ch *chord) index(code uint16) int {
	for i, k := range ch.combo.Keys {
		for _, rc := range k.Rawcodes {
			if rc == code {
				return i
			}
		}
	}
	return -1
}

// down records a key press and reports whether the whole combination is now
// held. A completed chord resets so holding keys fires only once.
func (ch *chord) down(code uint16) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	i := ch.index(code)
	if i < 0 {
		return false
	}
	ch.pressed[i] = true
	for _, p := range ch.pressed {
		if !p {
			return false
		}
	}
	for j := range ch.pressed {
		ch.pressed[j] = false
	}
	return true
}

func (ch *chord) up(code uint16) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if i := ch.index(code); i >= 0 {
		ch.pressed[i] = false
	}
}

// Listen starts a global keyboard hook and calls cb each time combo is
// pressed. cb runs on the hook goroutine and must not block. The returned
// stop function ends the hook.
func Listen(combo Combo, cb func()) (stop func()) {
	ch := newChord(combo)
	log.Printf("Hotkey: listening for %s", combo)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Hotkey: hook goroutine panicked: %v", r)
			}
		}()
		events := gohook.Start()
		if events == nil {
			log.Printf("Hotkey: gohook.Start returned no event channel")
			return
		}
		for ev := range events {
			switch ev.Kind {
			case gohook.KeyDown:
				if ch.down(ev.Rawcode) {
					log.Printf("Hotkey: %s fired", combo)
					if cb != nil {
						cb()
					}
				}
			case gohook.KeyUp:
				ch.up(ev.Rawcode)
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			gohook.End()
			<-done
		})
	}
}
