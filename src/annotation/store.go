package annotation

import (
	"image/color"

	"snaptrace/src/geometry"
)

// Store owns the document. Callers validate indices before mutating; a bad
// index panics with *IndexError.
type Store struct {
	shapes       []Shape
	texts        []TextItem
	counters     []Counter
	counterStart int
	nextCounter  int
}

// Snapshot is an immutable copy of the document plus the counter sequence.
type Snapshot struct {
	shapes       []Shape
	texts        []TextItem
	counters     []Counter
	counterStart int
	nextCounter  int
}

func NewStore(counterStart int) *Store {
	return &Store{counterStart: counterStart, nextCounter: counterStart}
}

func (s *Store) check(op string, l List, i int) {
	n := s.Len(l)
	if i < 0 || i >= n {
		panic(&IndexError{Op: op, Ref: Ref{List: l, Index: i}, Len: n})
	}
}

// Len returns the length of list l.
func (s *Store) Len(l List) int {
	switch l {
	case Shapes:
		return len(s.shapes)
	case Texts:
		return len(s.texts)
	case Counters:
		return len(s.counters)
	}
	return 0
}

// Empty reports whether the document has no annotations.
func (s *Store) Empty() bool {
	return len(s.shapes) == 0 && len(s.texts) == 0 && len(s.counters) == 0
}

func (s *Store) AddShape(sh Shape) int {
	s.shapes = append(s.shapes, sh.clone())
	return len(s.shapes) - 1
}

func (s *Store) AddText(t TextItem) int {
	s.texts = append(s.texts, t)
	return len(s.texts) - 1
}

// SetText replaces the content of an existing text item.
func (s *Store) SetText(i int, text string) {
	s.check("set text", Texts, i)
	s.texts[i].Text = text
}

// AddCounter appends a counter carrying the next sequence number.
func (s *Store) AddCounter(pos geometry.Point, c color.NRGBA, size float64) int {
	s.counters = append(s.counters, Counter{Number: s.nextCounter, Pos: pos, Color: c, Size: size})
	s.nextCounter++
	return len(s.counters) - 1
}

// UpdateShapePoints replaces a shape's geometry with a copy of pts.
func (s *Store) UpdateShapePoints(i int, pts []geometry.Point) {
	s.check("update shape points", Shapes, i)
	s.shapes[i].Points = append([]geometry.Point(nil), pts...)
}

func (s *Store) MoveText(i int, d geometry.Point) {
	s.check("move text", Texts, i)
	s.texts[i].Pos = s.texts[i].Pos.Add(d)
}

// SetTextPos places a text item at an absolute position.
func (s *Store) SetTextPos(i int, p geometry.Point) {
	s.check("set text position", Texts, i)
	s.texts[i].Pos = p
}

func (s *Store) MoveCounter(i int, d geometry.Point) {
	s.check("move counter", Counters, i)
	s.counters[i].Pos = s.counters[i].Pos.Add(d)
}

// SetCounterPos places a counter at an absolute position.
func (s *Store) SetCounterPos(i int, p geometry.Point) {
	s.check("set counter position", Counters, i)
	s.counters[i].Pos = p
}

// RemoveAt deletes one annotation; later indices in that list shift down.
func (s *Store) RemoveAt(r Ref) {
	s.check("remove", r.List, r.Index)
	switch r.List {
	case Shapes:
		s.shapes = append(s.shapes[:r.Index:r.Index], s.shapes[r.Index+1:]...)
	case Texts:
		s.texts = append(s.texts[:r.Index:r.Index], s.texts[r.Index+1:]...)
	case Counters:
		s.counters = append(s.counters[:r.Index:r.Index], s.counters[r.Index+1:]...)
	}
}

func (s *Store) Shape(i int) Shape {
	s.check("shape", Shapes, i)
	return s.shapes[i].clone()
}

func (s *Store) Text(i int) TextItem {
	s.check("text", Texts, i)
	return s.texts[i]
}

func (s *Store) Counter(i int) Counter {
	s.check("counter", Counters, i)
	return s.counters[i]
}

// Shapes returns a copy of the shape list in paint order.
func (s *Store) Shapes() []Shape {
	out := make([]Shape, len(s.shapes))
	for i, sh := range s.shapes {
		out[i] = sh.clone()
	}
	return out
}

func (s *Store) Texts() []TextItem { return append([]TextItem(nil), s.texts...) }

func (s *Store) Counters() []Counter { return append([]Counter(nil), s.counters...) }

// CounterStart returns the configured first sequence number.
func (s *Store) CounterStart() int { return s.counterStart }

// NextCounter returns the number the next counter will receive.
func (s *Store) NextCounter() int { return s.nextCounter }

// SetCounterStart sets both the start and the next value.
func (s *Store) SetCounterStart(n int) {
	s.counterStart = n
	s.nextCounter = n
}

// ResetCounter restarts numbering from the configured start.
func (s *Store) ResetCounter() {
	s.nextCounter = s.counterStart
}

// Snapshot copies the document. Image pixels are shared since they are
// immutable.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		shapes:       s.Shapes(),
		texts:        s.Texts(),
		counters:     s.Counters(),
		counterStart: s.counterStart,
		nextCounter:  s.nextCounter,
	}
}

// Restore replaces the document with snap. The snapshot stays usable.
func (s *Store) Restore(snap Snapshot) {
	s.shapes = make([]Shape, len(snap.shapes))
	for i, sh := range snap.shapes {
		s.shapes[i] = sh.clone()
	}
	s.texts = append([]TextItem(nil), snap.texts...)
	s.counters = append([]Counter(nil), snap.counters...)
	s.counterStart = snap.counterStart
	s.nextCounter = snap.nextCounter
}

// Equal reports whether two snapshots describe the same document.
func (a Snapshot) Equal(b Snapshot) bool {
	if a.counterStart != b.counterStart || a.nextCounter != b.nextCounter {
		return false
	}
	if len(a.shapes) != len(b.shapes) || len(a.texts) != len(b.texts) || len(a.counters) != len(b.counters) {
		return false
	}
	for i := range a.shapes {
		x, y := a.shapes[i], b.shapes[i]
		if x.Kind != y.Kind || x.Color != y.Color || x.Width != y.Width || x.Picture != y.Picture || len(x.Points) != len(y.Points) {
			return false
		}
		for j := range x.Points {
			if x.Points[j] != y.Points[j] {
				return false
			}
		}
	}
	for i := range a.texts {
		if a.texts[i] != b.texts[i] {
			return false
		}
	}
	for i := range a.counters {
		if a.counters[i] != b.counters[i] {
			return false
		}
	}
	return true
}
