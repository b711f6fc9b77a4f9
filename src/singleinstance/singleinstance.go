package singleinstance

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Server owns the loopback endpoint and accepts capture requests from
// secondary invocations.
type Server interface {
	// Start binds the first port of the configured range and accepts clients.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection, or the ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one client connection waiting for its capture outcome.
type Conn interface {
	Request() Request
	// RespondSuccess reports where the capture went.
	RespondSuccess(msg string) error
	RespondError(msg string) error
	Close() error
}

// Mode selects where a delegated capture is delivered.
type Mode int

const (
	ModeEditor Mode = iota
	ModeClipboard
	ModeFile
)

func (m Mode) String() string {
	switch m {
	case ModeEditor:
		return "EDITOR"
	case ModeClipboard:
		return "CLIPBOARD"
	case ModeFile:
		return "FILE"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Request is a single delegated capture request.
type Request struct {
	Mode Mode
	// Path is the output file for ModeFile. Empty means the next free
	// name in the resident's save directory.
	Path string
}

var ErrBadRequest = errors.New("malformed request")

const requestVerb = "CAPTURE"

// Encode returns the request line sent over the wire.
func (r Request) Encode() string {
	line := requestVerb + " " + r.Mode.String()
	if r.Mode == ModeFile && r.Path != "" {
		line += " " + r.Path
	}
	return line + "\n"
}

// ParseRequest decodes a request line as produced by Encode.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	verb, rest, _ := strings.Cut(line, " ")
	if verb != requestVerb {
		return Request{}, fmt.Errorf("%w: %q", ErrBadRequest, line)
	}
	mode, path, _ := strings.Cut(rest, " ")
	switch strings.ToUpper(mode) {
	case "EDITOR":
		return Request{Mode: ModeEditor}, nil
	case "CLIPBOARD":
		return Request{Mode: ModeClipboard}, nil
	case "FILE":
		return Request{Mode: ModeFile, Path: strings.TrimSpace(path)}, nil
	}
	return Request{}, fmt.Errorf("%w: unknown mode %q", ErrBadRequest, mode)
}

// Client delegates a capture to a resident instance.
type Client interface {
	// TryCapture scans the port range for a resident and hands it req.
	// If no resident is found, returns delegated=false, err=nil.
	TryCapture(ctx context.Context, req Request) (delegated bool, msg string, err error)
}

func NewServer() Server { return newTcpServer() }

func NewClient() Client { return newTcpClient() }
