// Package cmd wires the storehunter command line.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selimozcann/StoreHunter/internal/awscfg"
	"github.com/selimozcann/StoreHunter/internal/banner"
	"github.com/selimozcann/StoreHunter/internal/config"
	"github.com/selimozcann/StoreHunter/internal/devices"
	"github.com/selimozcann/StoreHunter/internal/engine"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/output"
	"github.com/selimozcann/StoreHunter/internal/report"
	"github.com/selimozcann/StoreHunter/internal/runner"
	"github.com/selimozcann/StoreHunter/internal/util"
)

// errTestsFailed signals a completed run with FAIL or ERROR verdicts. It maps
// to exit code 1 without an extra error line.
var errTestsFailed = errors.New("one or more devices failed")

// exportTimeout bounds report writes and uploads. They run on a context
// detached from the interrupt so a partial report is still delivered.
const exportTimeout = 2 * time.Minute

// s3ClientFunc builds the client used by --s3.
type s3ClientFunc func(ctx context.Context, cfg report.S3Config) (report.PutObjectAPI, error)

func newS3Client(ctx context.Context, cfg report.S3Config) (report.PutObjectAPI, error) {
	c, err := report.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// app carries state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	verbose    bool

	cfg    *config.Configuration
	logger *slog.Logger
	newS3  s3ClientFunc
}

// load reads .env, the optional config file and the environment, then builds
// the logger.
func (a *app) load() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log, a.verbose, os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}

// newLogger writes to w so stdout stays the report. verbose forces debug.
func newLogger(l config.Log, verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type testOptions struct {
	platform    string
	output      string
	html        string
	s3          bool
	screenshots bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), newS3: newS3Client}
	var opts testOptions

	root := &cobra.Command{
		Use:           "storehunter [url]",
		Short:         "Test app store redirects across mobile device profiles",
		Long:          "StoreHunter opens a link as 15 simulated phones and tablets and checks that each one lands on the App Store or Google Play.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTest(cmd, args, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (yaml, json or toml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	f := root.Flags()
	f.StringVarP(&opts.platform, "platform", "p", "", "Only test one platform (ios or android)")
	f.StringVarP(&opts.output, "output", "o", "", "Write the JSON report to this file")
	f.StringVar(&opts.html, "html", "", "Write the HTML report to this file")
	f.BoolVar(&opts.s3, "s3", false, "Upload the JSON report to report.s3_bucket")
	f.BoolVar(&opts.screenshots, "screenshots", false, "Capture up to three screenshots per device")
	f.Bool("headless", true, "Run Chrome headless")
	f.Duration("timeout", 30*time.Second, "Navigation timeout per page")
	_ = a.v.BindPFlag("browser.headless", f.Lookup("headless"))
	_ = a.v.BindPFlag("navigation.timeout", f.Lookup("timeout"))

	root.AddCommand(
		newListDevicesCmd(),
		newExamplesCmd(),
		newServeCmd(a),
		newDeviceFarmCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) runTest(cmd *cobra.Command, args []string, opts testOptions) error {
	out := cmd.OutOrStdout()
	banner.Print(out)

	var target string
	if len(args) == 1 {
		target = args[0]
	} else {
		u, err := promptURL(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		target = u
	}
	target = strings.TrimSpace(target)
	if !util.IsWebURL(target) {
		return fmt.Errorf("invalid URL %q: must start with http:// or https://", target)
	}

	profiles, err := selectProfiles(opts.platform)
	if err != nil {
		return err
	}
	_, _ = color.New(color.FgWhite).Fprintf(out, "Testing URL: %s\n", color.New(color.Underline).Sprint(target))
	if opts.platform != "" {
		_, _ = color.New(color.FgYellow).Fprintf(out, "Filtering to %s devices only (%d devices)\n", strings.ToUpper(opts.platform), len(profiles))
	}
	_, _ = color.New(color.FgCyan).Fprintf(out, "Testing across %d different devices...\n\n", len(profiles))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.FromConfiguration(a.cfg), nil, a.logger)
	results, runErr := eng.Run(ctx, target, profiles, engine.Options{Screenshots: opts.screenshots}, output.NewProgressBar(out).Observe)
	if runErr != nil && len(results) == 0 {
		return fmt.Errorf("run batch: %w", runErr)
	}

	summary := runner.Summarize(results)
	output.NewConsole(out).Report(target, results, summary)

	if err := a.export(ctx, out, target, results, summary, opts); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("batch interrupted after %d of %d devices: %w", len(results), len(profiles), runErr)
	}
	if runner.Failed(results) {
		return errTestsFailed
	}
	return nil
}

func (a *app) export(ctx context.Context, out io.Writer, target string, results []model.TestResult, summary model.Summary, opts testOptions) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exportTimeout)
	defer cancel()

	ok := color.New(color.FgGreen)
	at := time.Now()
	doc := report.NewDocument(target, results, summary, at)

	if opts.output != "" {
		data, err := report.Encode(doc)
		if err != nil {
			return err
		}
		path, err := report.WriteFile(opts.output, data)
		if err != nil {
			return err
		}
		_, _ = ok.Fprintf(out, "✓ Results exported to: %s\n", path)
	}

	if opts.html != "" {
		params := map[string]string{
			"platform":    opts.platform,
			"screenshots": strconv.FormatBool(opts.screenshots),
			"devices":     strconv.Itoa(len(results)),
		}
		if params["platform"] == "" {
			params["platform"] = "all"
		}
		path, err := report.WriteHTML(opts.html, output.BuildPage(target, results, summary, params, at))
		if err != nil {
			return err
		}
		_, _ = ok.Fprintf(out, "✓ HTML report written to: %s\n", path)
	}

	if opts.s3 {
		client, err := a.newS3(ctx, report.S3Config{
			Region:   a.cfg.AWS.Region,
			Endpoint: a.cfg.Report.S3Endpoint,
			Creds:    a.credentials(),
		})
		if err != nil {
			return err
		}
		up, err := report.NewS3Uploader(client, a.cfg.Report.S3Bucket, a.cfg.Report.S3Prefix, a.logger)
		if err != nil {
			return err
		}
		location, err := up.UploadDocument(ctx, doc, at)
		if err != nil {
			return err
		}
		_, _ = ok.Fprintf(out, "✓ Results uploaded to: %s\n", location)
	}
	return nil
}

func (a *app) credentials() awscfg.Credentials {
	return awscfg.Credentials{
		AccessKeyID:     a.cfg.AWS.AccessKeyID,
		SecretAccessKey: a.cfg.AWS.SecretAccessKey,
	}
}

// promptURL asks for a URL on in when none was given on the command line.
func promptURL(in io.Reader, out io.Writer) (string, error) {
	_, _ = color.New(color.FgWhite).Fprintln(out, "Welcome to StoreHunter!")
	_, _ = color.New(color.FgHiBlack).Fprintln(out, "This tool simulates clicking your link from 15 different devices.")
	_, _ = color.New(color.FgCyan).Fprint(out, "Enter the URL to test: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read URL: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no URL provided")
	}
	return line, nil
}

// selectProfiles returns the catalog, optionally filtered to one platform.
func selectProfiles(platform string) ([]model.DeviceProfile, error) {
	if platform == "" {
		return devices.All(), nil
	}
	p, err := model.ParsePlatform(platform)
	if err != nil {
		return nil, fmt.Errorf("--platform must be ios or android (got %q)", platform)
	}
	return devices.ByPlatform(p), nil
}
