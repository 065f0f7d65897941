// Package cli wires the pipeline together behind a cobra command tree:
//
//	finspider scrape AAPL MSFT --metrics --news
//	finspider screener --sector technology --start 1 --end 3
//	finspider patents "apple inc" --after 2020-01-01 --before 2024-12-31
//
// Configuration comes from the environment; the flags here override the
// handful of settings that change run to run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/use-agent/finspider/browser"
	"github.com/use-agent/finspider/config"
	"github.com/use-agent/finspider/extract"
	"github.com/use-agent/finspider/llm"
	"github.com/use-agent/finspider/models"
	"github.com/use-agent/finspider/storage"
)

// app carries state shared across subcommands after the root
// PersistentPreRun has loaded configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	// global flag overrides
	outDir     string
	format     string
	headless   bool
	logLevel   string
	browserBin string
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := a.rootCommand()

	if err := root.ExecuteContext(ctx); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// exitError smuggles a non-zero run exit code through cobra's error
// path without printing a spurious message.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "finspider",
		Short:         "Scrape structured financial and patent data from JS-rendered sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.outDir, "out", "", "artifact root directory (overrides FINSPIDER_OUTPUT_DIR)")
	pf.StringVar(&a.format, "format", "", "artifact format: csv, parquet or json")
	pf.BoolVar(&a.headless, "headless", true, "run the browser headless")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.browserBin, "browser-bin", "", "Chromium binary path (overrides FINSPIDER_BROWSER_BIN)")

	root.AddCommand(a.scrapeCommand())
	root.AddCommand(a.screenerCommand())
	root.AddCommand(a.patentsCommand())
	return root
}

// setup loads configuration, applies flag overrides and builds the
// process logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Load()
	if a.outDir != "" {
		cfg.Output.Dir = a.outDir
	}
	if a.format != "" {
		cfg.Output.Format = strings.ToLower(a.format)
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = a.headless
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.browserBin != "" {
		cfg.Browser.Bin = a.browserBin
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// pipeline is everything a scraping command needs, plus its teardown.
type pipeline struct {
	driver *browser.Driver
	engine *extract.Engine
	sink   *storage.Sink
	close  func()
}

func (a *app) buildPipeline() (*pipeline, error) {
	driver, err := browser.New(a.cfg.Browser, a.cfg.Scraper)
	if err != nil {
		return nil, err
	}
	client := llm.NewClient(a.cfg.LLM, nil)
	engine := extract.NewEngine(client, extract.PolicyFromConfig(a.cfg.Retry), a.logger)
	sink := storage.NewSink(a.cfg.Output, a.logger)
	return &pipeline{
		driver: driver,
		engine: engine,
		sink:   sink,
		close:  driver.Close,
	}, nil
}

// reportExit converts a run report into the command's exit status and
// prints the per-entity summary.
func reportExit(report models.RunReport) error {
	for _, e := range report.Entities {
		status := "ok"
		if e.Fatal != nil {
			status = "failed: " + e.Fatal.Error()
		} else if e.Failed() > 0 {
			status = "partial"
		}
		fmt.Printf("%-8s persisted=%d skipped=%d failed=%d %s\n",
			e.Symbol, e.Persisted(), len(e.Sections)-e.Persisted()-e.Failed(), e.Failed(), status)
	}
	if code := report.ExitCode(); code != 0 {
		return exitError{code: code}
	}
	return nil
}
