package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/selimozcann/StoreHunter/internal/devicefarm"
	"github.com/selimozcann/StoreHunter/internal/util"
)

func newDeviceFarmCmd(a *app) *cobra.Command {
	df := &cobra.Command{
		Use:   "devicefarm",
		Short: "Real-device testing on AWS Device Farm",
	}

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Show the AWS Device Farm setup guide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSetup(cmd.OutOrStdout(), ".env")
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available real devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = color.New(color.FgWhite).Fprintln(out, "Connecting to AWS Device Farm...")
			client, err := devicefarm.New(cmd.Context(), a.deviceFarmConfig(), a.logger)
			if err != nil {
				return err
			}
			found, err := client.ListDevices(cmd.Context())
			if err != nil {
				_, _ = color.New(color.FgYellow).Fprintln(out, "Make sure the AWS credentials are set; run `storehunter devicefarm setup` for instructions.")
				return err
			}
			printFarmDevices(out, found)
			return nil
		},
	}

	var deviceARN string
	run := &cobra.Command{
		Use:   "run <url>",
		Short: "Request a real-device run (not yet automated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !util.IsWebURL(args[0]) {
				return fmt.Errorf("invalid URL %q: must start with http:// or https://", args[0])
			}
			// RunOnDevice does not call the API yet.
			client := devicefarm.NewClient(nil, a.cfg.DeviceFarm.ProjectARN, a.logger)
			st := client.RunOnDevice(cmd.Context(), args[0], deviceARN)
			out := cmd.OutOrStdout()
			_, _ = color.New(color.FgWhite).Fprintf(out, "Testing: %s\n", color.CyanString(st.URL))
			_, _ = color.New(color.FgYellow).Fprintf(out, "Status: %s\n", st.Status)
			_, _ = color.New(color.FgWhite).Fprintln(out, st.Message)
			_, _ = color.New(color.FgHiBlack).Fprintln(out, "Use the console at https://console.aws.amazon.com/devicefarm or run the simulated test with `storehunter <url>`.")
			return nil
		},
	}

	run.Flags().StringVar(&deviceARN, "device", "", "Device ARN as printed by devicefarm list")

	df.AddCommand(setup, list, run)
	return df
}

func (a *app) deviceFarmConfig() devicefarm.Config {
	return devicefarm.Config{
		Region:     a.cfg.DeviceFarm.Region,
		ProjectARN: a.cfg.DeviceFarm.ProjectARN,
		Creds:      a.credentials(),
	}
}

// printSetup prints the guide and reports whether envFile exists.
func printSetup(out io.Writer, envFile string) {
	_, _ = color.New(color.Bold, color.FgBlue).Fprintln(out, "AWS Device Farm - Real Device Testing")
	fmt.Fprintln(out, devicefarm.SetupGuide())

	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		_, _ = color.New(color.FgYellow).Fprintf(out, "⚠ No %s file found!\n", envFile)
		fmt.Fprintf(out, "\nCreate a %s file with your AWS credentials:\n\n", envFile)
		_, _ = color.New(color.FgHiBlack).Fprint(out, devicefarm.EnvTemplate)
		return
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "✓ %s file found!\n", envFile)
	fmt.Fprintf(out, "\nNext step: run %s\n", color.CyanString("storehunter devicefarm list"))
}

func printFarmDevices(out io.Writer, d devicefarm.Devices) {
	_, _ = color.New(color.Bold, color.FgGreen).Fprintf(out, "\n✓ Found %d available devices\n\n", d.Total())
	groups := []struct {
		title   string
		c       *color.Color
		devices []devicefarm.Device
	}{
		{"iOS Devices:", color.New(color.Bold, color.FgCyan), d.IOS},
		{"Android Devices:", color.New(color.Bold, color.FgGreen), d.Android},
	}
	for _, g := range groups {
		if len(g.devices) == 0 {
			continue
		}
		_, _ = g.c.Fprintln(out, g.title)
		for i, dev := range g.devices {
			fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, dev.Name, dev.OS)
			_, _ = color.New(color.FgHiBlack).Fprintf(out, "     Model: %s | Form: %s\n", dev.Model, dev.FormFactor)
		}
		fmt.Fprintln(out)
	}
}
