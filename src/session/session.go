package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"

	"snaptrace/src/clipboard"
	"snaptrace/src/export"
	"snaptrace/src/screenshot"
	"snaptrace/src/singleinstance"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

const DefaultDeadline = 10 * time.Second

type RegionSelectorFunc func(ctx context.Context) (screenshot.Region, bool, error)

type CaptureFunc func(ctx context.Context, region screenshot.Region) (*image.RGBA, error)

// ResultTarget receives a finished capture. OnSuccess returns a short
// human-readable description of where the capture went.
type ResultTarget interface {
	OnSuccess(img *image.RGBA, region screenshot.Region) (string, error)
	OnFailure(err error) error
}

type Options struct {
	Deadline     time.Duration
	SelectRegion RegionSelectorFunc
	Capture      CaptureFunc
	Target       ResultTarget
}

type Result struct {
	ID      string
	Region  screenshot.Region
	Message string
}

// Execute runs one select, capture and deliver cycle.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}
	capture := opts.Capture
	if capture == nil {
		capture = func(_ context.Context, r screenshot.Region) (*image.RGBA, error) {
			return screenshot.CaptureRegion(r)
		}
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	res := Result{ID: uuid.NewString()}
	region, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return res, err
	}
	if cancelled {
		_ = opts.Target.OnFailure(ErrSelectionCancelled)
		return res, ErrSelectionCancelled
	}
	res.Region = region

	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	log.Printf("Session %s: capturing %s", res.ID, region)
	img, err := capture(jobCtx, region)
	if err != nil {
		err = fmt.Errorf("capture %s: %w", region, err)
		_ = opts.Target.OnFailure(err)
		return res, err
	}

	msg, err := opts.Target.OnSuccess(img, region)
	if err != nil {
		_ = opts.Target.OnFailure(err)
		return res, err
	}
	res.Message = msg
	log.Printf("Session %s: %s", res.ID, msg)
	return res, nil
}

// EditorTarget hands the capture to the annotation editor.
type EditorTarget struct {
	Open func(img *image.RGBA, region screenshot.Region)
}

func (t EditorTarget) OnSuccess(img *image.RGBA, region screenshot.Region) (string, error) {
	if t.Open == nil {
		return "", errors.New("editor target has no Open function")
	}
	t.Open(img, region)
	return "opened in editor", nil
}

func (EditorTarget) OnFailure(error) error { return nil }

// ClipboardTarget copies the capture as a PNG image.
type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(img *image.RGBA, _ screenshot.Region) (string, error) {
	if err := clipboard.WriteImage(img); err != nil {
		return "", err
	}
	return "copied to clipboard", nil
}

func (ClipboardTarget) OnFailure(error) error { return nil }

// FileTarget saves to Path, or to the next free name for Base in Dir.
type FileTarget struct {
	Path string
	Dir  string
	Base string
}

func (t FileTarget) OnSuccess(img *image.RGBA, _ screenshot.Region) (string, error) {
	path := t.Path
	if path == "" {
		var err error
		if path, err = export.SaveNext(t.Dir, t.Base, img); err != nil {
			return "", err
		}
		return "saved " + path, nil
	}
	if err := export.SavePNG(path, img); err != nil {
		return "", err
	}
	return "saved " + path, nil
}

func (FileTarget) OnFailure(error) error { return nil }

// DelegatedTarget delivers to Sink and reports the outcome to a client that
// asked the resident instance for the capture.
type DelegatedTarget struct {
	Conn singleinstance.Conn
	Sink ResultTarget
}

func (t DelegatedTarget) OnSuccess(img *image.RGBA, region screenshot.Region) (string, error) {
	if t.Conn == nil || t.Sink == nil {
		return "", errors.New("delegated target missing connection or sink")
	}
	msg, err := t.Sink.OnSuccess(img, region)
	if err != nil {
		return "", err
	}
	return msg, t.Conn.RespondSuccess(msg)
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Sink != nil {
		_ = t.Sink.OnFailure(err)
	}
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}
