package render

import (
	"log"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"snaptrace/src/annotation"
	"snaptrace/src/geometry"
)

// textPad is the margin around a text item's measured box.
const textPad = 2

type faceKey struct {
	bold bool
	size float64
}

// Fonts caches Go font faces by style and pixel size.
type Fonts struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

var (
	sharedFonts     *Fonts
	sharedFontsOnce sync.Once
)

// SharedFonts returns the process-wide font cache.
func SharedFonts() *Fonts {
	sharedFontsOnce.Do(func() {
		sharedFonts = newFonts()
	})
	return sharedFonts
}

func newFonts() *Fonts {
	f := &Fonts{faces: make(map[faceKey]font.Face)}
	var err error
	if f.regular, err = opentype.Parse(goregular.TTF); err != nil {
		log.Printf("Render: failed to parse regular font: %v", err)
	}
	if f.bold, err = opentype.Parse(gobold.TTF); err != nil {
		log.Printf("Render: failed to parse bold font: %v", err)
	}
	return f
}

// Face returns a face at size pixels, rounded to half-pixel steps. It falls
// back to basicfont when the Go fonts are unavailable.
func (f *Fonts) Face(size float64, bold bool) font.Face {
	size = math.Max(1, math.Round(size*2)/2)
	key := faceKey{bold: bold, size: size}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	var face font.Face = basicfont.Face7x13
	if src != nil {
		nf, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			log.Printf("Render: failed to create face at %.1fpx: %v", size, err)
		} else {
			face = nf
		}
	}
	f.faces[key] = face
	return face
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Measurer reports text metrics in document units using the Go fonts.
type Measurer struct {
	fonts *Fonts
}

func NewMeasurer() *Measurer { return &Measurer{fonts: SharedFonts()} }

func (m *Measurer) Advance(text string, size float64) float64 {
	return toFloat(font.MeasureString(m.fonts.Face(size, false), text))
}

func (m *Measurer) Metrics(size float64) (ascent, lineHeight float64) {
	met := m.fonts.Face(size, false).Metrics()
	return toFloat(met.Ascent), toFloat(met.Height)
}

// TextBounds is the padded box covering every line of t, measured from the
// first line's ascent.
func (m *Measurer) TextBounds(t annotation.TextItem) geometry.Rect {
	lines := strings.Split(t.Text, "\n")
	widest := 0.0
	for _, l := range lines {
		widest = math.Max(widest, m.Advance(l, t.FontSize))
	}
	ascent, lineH := m.Metrics(t.FontSize)
	top := t.Pos.Y - ascent
	return geometry.Rect{
		Min: geometry.Pt(t.Pos.X-textPad, top-textPad),
		Max: geometry.Pt(t.Pos.X+widest+textPad, top+lineH*float64(len(lines))+textPad),
	}
}
