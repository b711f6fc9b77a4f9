package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"snaptrace/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

type summary struct {
	ok, busy, errs int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	return newRootCmd(opts).Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-capture",
		Short:         "Fire concurrent delegated captures at a resident instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := requestFor(opts.mode)
			if err != nil {
				return err
			}
			start := time.Now()
			s := stress(singleinstance.NewClient(), req, opts.n, opts.deadline)
			report(os.Stdout, opts.n, s, time.Since(start))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "clip", "clip|file: deliver to the clipboard or the save folder")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")
	return cmd
}

func requestFor(mode string) (singleinstance.Request, error) {
	switch mode {
	case "clip":
		return singleinstance.Request{Mode: singleinstance.ModeClipboard}, nil
	case "file":
		return singleinstance.Request{Mode: singleinstance.ModeFile}, nil
	}
	return singleinstance.Request{}, fmt.Errorf("unknown mode %q", mode)
}

type captureClient interface {
	TryCapture(ctx context.Context, req singleinstance.Request) (bool, string, error)
}

func stress(client captureClient, req singleinstance.Request, n int, deadline time.Duration) summary {
	var wg sync.WaitGroup
	var s summary
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, _, err := client.TryCapture(ctx, req)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&s.busy, 1)
			case err != nil || !delegated:
				atomic.AddInt32(&s.errs, 1)
			default:
				atomic.AddInt32(&s.ok, 1)
			}
		}()
	}
	wg.Wait()
	return s
}

func report(w io.Writer, n int, s summary, elapsed time.Duration) {
	fmt.Fprintf(w, "launched=%d ok=%d busy=%d err=%d elapsed=%s\n", n, s.ok, s.busy, s.errs, elapsed)
}
