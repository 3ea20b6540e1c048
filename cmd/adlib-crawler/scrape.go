package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"adlib-crawler/internal/app"
	"adlib-crawler/internal/config"
	"adlib-crawler/internal/export"
	"adlib-crawler/internal/observability"
)

type scrapeFlags struct {
	configPath string
	outDir     string
	fields     []string
	content    bool
	headless   bool
}

var scrapeOpts scrapeFlags

var scrapeCmd = &cobra.Command{
	Use:   "scrape <ad-library-url>",
	Short: "Scrolls the listing, extracts every ad card and writes CSV (and ZIP with --content).",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVarP(&scrapeOpts.configPath, "config", "c", "configs/config.yaml", "Path to the YAML config.")
	f.StringVarP(&scrapeOpts.outDir, "out", "o", "", "Output directory (overrides output.dir).")
	f.StringSliceVar(&scrapeOpts.fields, "fields", nil,
		"Columns to keep: "+strings.Join(export.FieldKeys(), ",")+" (overrides output.fields).")
	f.BoolVar(&scrapeOpts.content, "content", false, "Download image/video previews and pack them into a ZIP.")
	f.BoolVar(&scrapeOpts.headless, "headless", true, "Run Chrome headless (overrides rod.headless).")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(scrapeOpts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Dir = scrapeOpts.outDir
	}
	if flags.Changed("fields") {
		cfg.Output.Fields = scrapeOpts.fields
	}
	if flags.Changed("content") {
		cfg.Output.Content = scrapeOpts.content
	}
	if flags.Changed("headless") {
		cfg.Rod.Headless = scrapeOpts.headless
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	selectors, err := cfg.Selectors()
	if err != nil {
		return fmt.Errorf("failed to load selectors: %w", err)
	}

	logger := observability.NewLogger(cfg.LoggerOptions())
	defer func() { _ = logger.Close() }()

	ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
	defer cancel()

	out := cmd.OutOrStdout()
	orchestrator := app.NewOrchestrator(cfg, selectors, logger, out)

	report, err := orchestrator.Run(ctx, app.RunOptions{
		URL:     args[0],
		Fields:  cfg.Fields(),
		Content: cfg.Output.Content,
		OutDir:  cfg.Output.Dir,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Collected %d ads from %d cards (scrolls: %d, %s)\n",
		report.Records, report.CardsSeen, report.Scroll.Iterations, report.Scroll.StopReason)

	if len(report.Warnings) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %d warnings:\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", w)
		}
	}

	if report.CSVPath != "" {
		fmt.Fprintf(out, "✓ CSV: %s\n", report.CSVPath)
	}
	if report.ArchivePath != "" {
		fmt.Fprintf(out, "✓ ZIP: %s\n", report.ArchivePath)
	}

	return nil
}
