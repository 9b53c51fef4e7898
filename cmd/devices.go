package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/selimozcann/StoreHunter/internal/banner"
	"github.com/selimozcann/StoreHunter/internal/devices"
	"github.com/selimozcann/StoreHunter/internal/model"
)

func newListDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-devices",
		Short: "List all built-in device profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			banner.Print(out)
			printDevices(out)
			return nil
		},
	}
}

func printDevices(out io.Writer) {
	_, _ = color.New(color.Bold, color.FgCyan).Fprintln(out, "AVAILABLE DEVICE PROFILES")
	fmt.Fprintln(out)

	ios := devices.ByPlatform(model.PlatformIOS)
	android := devices.ByPlatform(model.PlatformAndroid)

	_, _ = color.New(color.Bold, color.FgBlue).Fprintf(out, "iOS Devices (%d):\n", len(ios))
	for i, d := range ios {
		fmt.Fprintf(out, "  %d. %s\n", i+1, d.Name)
	}
	_, _ = color.New(color.Bold, color.FgGreen).Fprintf(out, "\nAndroid Devices (%d):\n", len(android))
	for i, d := range android {
		fmt.Fprintf(out, "  %d. %s\n", i+1, d.Name)
	}
	_, _ = color.New(color.FgHiBlack).Fprintf(out, "\nTotal: %d devices\n", len(ios)+len(android))
}

var examples = []struct {
	title   string
	command string
}{
	{"Test a URL interactively", "storehunter"},
	{"Test a specific URL", "storehunter https://lnkd.in/your-ad"},
	{"Test only iOS devices", "storehunter https://lnkd.in/your-ad --platform ios"},
	{"Test only Android devices", "storehunter https://lnkd.in/your-ad --platform android"},
	{"Export results to JSON and HTML", "storehunter https://lnkd.in/your-ad -o results.json --html report.html"},
	{"Upload the JSON report to S3", "STOREHUNTER_REPORT_S3_BUCKET=my-bucket storehunter https://lnkd.in/your-ad --s3"},
	{"Capture screenshots", "storehunter https://lnkd.in/your-ad --screenshots --html report.html"},
	{"List all available devices", "storehunter list-devices"},
	{"Start the HTTP service", "storehunter serve --addr :3000"},
	{"List real devices on AWS Device Farm", "storehunter devicefarm list"},
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show example usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			banner.Print(out)
			_, _ = color.New(color.Bold, color.FgCyan).Fprintln(out, "EXAMPLE USAGE")
			fmt.Fprintln(out)
			for i, ex := range examples {
				_, _ = color.New(color.FgWhite).Fprintf(out, "%d. %s:\n", i+1, ex.title)
				_, _ = color.New(color.FgHiBlack).Fprintf(out, "   $ %s\n\n", ex.command)
			}
			return nil
		},
	}
}
