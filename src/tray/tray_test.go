package tray

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestIconIsPNG(t *testing.T) {
	data, err := Icon()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("icon bounds %v", b)
	}
	if _, _, _, a := img.At(25, 25).RGBA(); a == 0 {
		t.Fatal("arrow tip not drawn")
	}
}

func TestAboutText(t *testing.T) {
	SetAboutHotkey("Ctrl+Alt+S")
	SetAboutExtra("Resident TCP port: 49500")
	defer SetAboutHotkey("")
	defer SetAboutExtra("")
	got := AboutText()
	for _, want := range []string{"SnapTrace", "Ctrl+Alt+S", "49500"} {
		if !strings.Contains(got, want) {
			t.Errorf("AboutText() = %q, missing %q", got, want)
		}
	}
}

func TestUpdateTooltipBeforeReady(t *testing.T) {
	UpdateTooltip("ignored")
}
