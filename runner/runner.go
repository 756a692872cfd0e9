// Package runner drives repeated mirror scans on a fixed interval.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ScanFunc runs one mirror pass and reports whether new history was
// consumed.
type ScanFunc func(ctx context.Context) (bool, error)

// Loop invokes a scan at a fixed interval, never concurrently: each pass
// runs to completion before the next tick is considered. A scan error stops
// the loop so the operator sees it; the next start resumes from the
// persisted cursor.
type Loop struct {
	scan     ScanFunc
	interval time.Duration
	logger   *slog.Logger
}

// New creates a loop. The interval must be positive.
func New(scan ScanFunc, interval time.Duration, logger *slog.Logger) (*Loop, error) {
	if scan == nil {
		return nil, fmt.Errorf("scan func must not be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{scan: scan, interval: interval, logger: logger}, nil
}

// Run scans immediately and then once per interval until the context is
// cancelled. Cancellation is a clean stop, not an error.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		advanced, err := l.scan(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("scan: %w", err)
		}
		if !advanced {
			l.logger.Debug("nothing new", "nextCheck", l.interval)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
