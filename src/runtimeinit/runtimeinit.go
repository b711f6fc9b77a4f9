package runtimeinit

import (
	"fmt"
	"log"

	"snaptrace/src/clipboard"
	"snaptrace/src/config"
	"snaptrace/src/notification"
	"snaptrace/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// RequireDisplay fails startup when no display can be captured.
	RequireDisplay bool
	// RequireClipboard fails startup when the clipboard is unavailable;
	// otherwise copy actions fail individually.
	RequireClipboard bool
	// ShowBlockingError reports startup failures in a modal dialog.
	ShowBlockingError bool
}

func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if opts.RequireDisplay {
		ds, err := screenshot.Displays()
		if err != nil {
			if opts.ShowBlockingError {
				notification.ShowBlockingError("No display", fmt.Sprintf("SnapTrace cannot capture the screen: %v", err))
			}
			return nil, fmt.Errorf("startup check failed: %w", err)
		}
		log.Printf("Startup: %d display(s) found", len(ds))
	}

	if err := clipboard.Init(); err != nil {
		if opts.RequireClipboard {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		log.Printf("Startup: clipboard unavailable: %v", err)
	}

	return cfg, nil
}
