package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/selimozcann/StoreHunter/internal/runner"
)

const barWidth = 50

// ProgressBar redraws a single status line as devices complete.
type ProgressBar struct {
	w io.Writer
}

// NewProgressBar creates a bar writing to w.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

// Observe is a runner.Observer.
func (b *ProgressBar) Observe(p runner.Progress) {
	if p.Total <= 0 {
		return
	}
	percent := int(math.Round(float64(p.Current) * 100 / float64(p.Total)))
	filled := percent / 2
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(b.w, "\r%s [%s] %d%% - %s", heading.Sprint("Testing:"), bar, percent, p.Device)
	if p.Current == p.Total {
		fmt.Fprintln(b.w)
	}
}
