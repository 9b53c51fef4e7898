// Package statuscolor maps verdicts, platforms and rates to terminal colours.
package statuscolor

import (
	"github.com/fatih/color"

	"github.com/selimozcann/StoreHunter/internal/model"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	gray   = color.New(color.FgHiBlack)
	blue   = color.New(color.FgBlue)
)

// Sprint returns the labelled, coloured form of a verdict.
func Sprint(s model.Status) string {
	switch s {
	case model.StatusPass:
		return green.Sprint("✓ PASS")
	case model.StatusFail:
		return red.Sprint("✗ FAIL")
	case model.StatusError:
		return gray.Sprint("✕ ERROR")
	case model.StatusWarning:
		return yellow.Sprint("⚠ WARN")
	}
	return gray.Sprint(string(s))
}

// Platform colours iOS blue and Android green.
func Platform(p model.Platform) string {
	if p == model.PlatformIOS {
		return blue.Sprint(string(p))
	}
	return green.Sprint(string(p))
}

// ForRate picks green at 100%, yellow at 80% or more and red below.
func ForRate(rate int) *color.Color {
	switch {
	case rate >= 100:
		return green
	case rate >= 80:
		return yellow
	default:
		return red
	}
}

// Gray wraps text in the muted colour used for secondary details.
func Gray(text string) string {
	return gray.Sprint(text)
}
