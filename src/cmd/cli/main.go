package main

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"snaptrace/src/clipboard"
	"snaptrace/src/config"
	"snaptrace/src/export"
	"snaptrace/src/screenshot"
)

// allDisplays selects the union of every display.
const allDisplays = -1

type captureOptions struct {
	out       string
	clipboard bool
	display   int
	verbose   bool
}

// grabFunc captures display i, or every display for allDisplays.
type grabFunc func(display int) (*image.RGBA, screenshot.Region, error)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"snaptrace-cli"}
	}
	cmd := newRootCmd(grabScreen, os.Stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(grab grabFunc, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "snaptrace-cli",
		Short:         "Headless screen capture",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCaptureCmd(grab, stdout), newDisplaysCmd(stdout))
	return root
}

func newCaptureCmd(grab grabFunc, stdout io.Writer) *cobra.Command {
	opts := &captureOptions{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the screen to a PNG file, stdout or the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(*opts, grab, stdout)
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "Output PNG path ('-' for stdout; default: next free name in SAVE_DIR)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Copy the capture to the clipboard")
	cmd.Flags().IntVar(&opts.display, "display", allDisplays, "Display index to capture (default: all displays)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.MarkFlagsMutuallyExclusive("out", "clipboard")
	return cmd
}

func newDisplaysCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "displays",
		Short: "List capturable displays",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := screenshot.Displays()
			if err != nil {
				return err
			}
			for i, d := range ds {
				fmt.Fprintf(stdout, "%d\t%s\n", i, screenshot.RegionOf(d))
			}
			return nil
		},
	}
}

func runCapture(opts captureOptions, grab grabFunc, stdout io.Writer) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	img, region, err := grab(opts.display)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	log.Printf("captured %s", region)

	switch {
	case opts.clipboard:
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("clipboard unavailable: %w", err)
		}
		return clipboard.WriteImage(img)
	case opts.out == "-":
		data, err := export.EncodePNG(img)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	case opts.out != "":
		if err := export.SavePNG(opts.out, img); err != nil {
			return err
		}
		fmt.Fprintln(stdout, opts.out)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	path, err := export.SaveNext(cfg.SaveDir, cfg.BaseFilename, img)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func grabScreen(display int) (*image.RGBA, screenshot.Region, error) {
	if display != allDisplays {
		return screenshot.CaptureDisplay(display)
	}
	vb, err := screenshot.VirtualBounds()
	if err != nil {
		return nil, screenshot.Region{}, err
	}
	r := screenshot.RegionOf(vb)
	img, err := screenshot.CaptureRegion(r)
	return img, r, err
}

// normalizeLegacyArgs maps single-dash long flags to cobra's double-dash form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, f := range []string{"out", "clipboard", "display", "verbose"} {
			if arg == "-"+f || strings.HasPrefix(arg, "-"+f+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}
