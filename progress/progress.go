// Package progress renders a terminal progress bar for the mbox backfill.
package progress

import (
	"sync"

	"github.com/pterm/pterm"
)

// Bar tracks backfill progress. It stays silent unless the log level is
// "info", so debug runs keep a clean line-oriented log.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar over total messages.
func New(total int, logLevel string) *Bar {
	bar := &Bar{
		total:   total,
		enabled: logLevel == "info" && total > 0,
	}

	if bar.enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Importing messages").
			Start()
		bar.pb = pb
	}

	return bar
}

// Increment advances the bar by one message, showing its id in the title.
func (b *Bar) Increment(messageID string) {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pb.Increment()
	if messageID != "" {
		if len(messageID) > 40 {
			messageID = messageID[:37] + "..."
		}
		b.pb.UpdateTitle("Importing: " + messageID)
	}
}

// Fail prints an error above the bar without stopping it.
func (b *Bar) Fail(err error) {
	if err == nil {
		return
	}
	if !b.enabled || b.pb == nil {
		return
	}
	pterm.Error.Printf("Error: %v\n", err)
}

// Stop finalizes the bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
	pterm.Success.Println("Import complete")
}
