package overlay

import (
	"context"
	"image"

	"snaptrace/src/config"
	"snaptrace/src/screenshot"
)

// Selector decides which screen region a capture covers. Select is called
// from the event loop goroutine. It returns (region, cancelled, error); when
// cancelled is true the region is undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (screenshot.Region, bool, error)
}

// NewSelector returns a selector for the configured capture scope: the union
// of all displays, or only the primary one.
func NewSelector(scope string) Selector {
	return &displaySelector{scope: scope, displays: screenshot.Displays}
}

type displaySelector struct {
	scope    string
	displays func() ([]image.Rectangle, error)
}

func (s *displaySelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	if err := ctx.Err(); err != nil {
		return screenshot.Region{}, false, err
	}
	ds, err := s.displays()
	if err != nil {
		return screenshot.Region{}, false, err
	}
	if len(ds) == 0 {
		return screenshot.Region{}, false, screenshot.ErrNoDisplay
	}
	if s.scope == config.ScopePrimary {
		return screenshot.RegionOf(ds[0]), false, nil
	}
	u := ds[0]
	for _, d := range ds[1:] {
		u = u.Union(d)
	}
	return screenshot.RegionOf(u), false, nil
}

// Fixed always selects the same region.
type Fixed screenshot.Region

func (f Fixed) Select(ctx context.Context) (screenshot.Region, bool, error) {
	if err := ctx.Err(); err != nil {
		return screenshot.Region{}, false, err
	}
	return screenshot.Region(f), false, nil
}
