package banner

import (
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Print writes the startup banner to w.
func Print(w io.Writer) {
	fig := figure.NewFigure("STOREHUNTER", "doom", true)
	_, _ = color.New(color.FgCyan).Fprint(w, fig.String())

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintln(w, "    App store redirect tester | 15 mobile device profiles")
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}
