// Package main provides the CLI entry point for pvextract-go.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/pvextract-go/internal/config"
	"github.com/ukaji3/pvextract-go/internal/logging"
	"github.com/ukaji3/pvextract-go/internal/metrics"
	"github.com/ukaji3/pvextract-go/pkg/pvextract"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/output"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/source"
)

const usageWarning = "Attention: l'information des UEs acquises antérieurement disparait."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(source.NewPDF()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opener source.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "pvextract [report.pdf]",
		Short: "Convert a PDF grade report into spreadsheets",
		Long: `pvextract-go reads the grade tables of a multi-page PDF report, merges
the records of every student and writes a full and a simple spreadsheet
next to the report.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printUsage(cmd.OutOrStdout(), cmd.UseLine())
				return nil
			}
			return run(cmd.Context(), args[0], opener)
		},
	}
}

func printUsage(w io.Writer, useLine string) {
	fmt.Fprintf(w, "Usage: %s\n", useLine)
	fmt.Fprintln(w, usageWarning)
}

func run(ctx context.Context, inputPath string, opener source.Opener) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx = logging.WithRunID(ctx, logging.NewRunID())
	started := time.Now()
	runMetrics := metrics.New()

	opts := cfg.Options()
	opts.Opener = opener
	opts.Logger = logger.With("document", inputPath)
	opts.OnPage = func(r pvextract.PageReport) {
		runMetrics.ObservePage(r)
		logger.InfoContext(ctx, "page done",
			"page", r.Page, "outcome", string(r.Outcome), "students", r.Students,
			"progress", fmt.Sprintf("%d/%d", r.Done, r.Total))
	}

	res, err := pvextract.Extract(ctx, inputPath, opts)
	if err != nil {
		logger.ErrorContext(ctx, "extraction failed", "document", inputPath, "error", err)
		return fmt.Errorf("extraction failed: %w", err)
	}

	written, err := writeOutputs(inputPath, cfg, res)
	if err != nil {
		logger.ErrorContext(ctx, "write failed", "error", err)
		return err
	}

	runMetrics.ObserveResult(res, time.Since(started))
	if cfg.MetricsFile != "" {
		if err := runMetrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.WarnContext(ctx, "metrics not written", "path", cfg.MetricsFile, "error", err)
		}
	}

	logSummary(ctx, logger, res, written, time.Since(started))
	return nil
}

func writeOutputs(inputPath string, cfg *config.Config, res *pvextract.Result) ([]string, error) {
	palette := cfg.OutputPalette()

	full := output.FileName(inputPath, "", ".xlsx")
	if err := output.WriteXLSX(full, res.Table.FullView(), palette); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", full, err)
	}

	simple := output.FileName(inputPath, cfg.SimpleSuffix, ".xlsx")
	if err := output.WriteXLSX(simple, pvextract.SimpleView(res.Table), palette); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", simple, err)
	}
	written := []string{full, simple}

	if cfg.WriteJSON {
		jsonPath := output.FileName(inputPath, "", ".json")
		data, err := output.ToJSON(res.Table.FullView(), true)
		if err != nil {
			return nil, fmt.Errorf("serialization failed: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		written = append(written, jsonPath)
	}
	return written, nil
}

func logSummary(ctx context.Context, logger *slog.Logger, res *pvextract.Result, written []string, elapsed time.Duration) {
	level := slog.LevelInfo
	if res.PagesFailed > 0 {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "conversion finished",
		"pages", res.PageCount,
		"processed", res.PagesProcessed,
		"skipped", res.PagesSkipped,
		"failed", res.PagesFailed,
		"students", res.Table.Len(),
		"outputs", written,
		"elapsed", elapsed.String())
	for _, d := range res.Diagnostics {
		logger.WarnContext(ctx, "page diagnostic", "page", d.Page, "component", d.Component, "error", d.Err)
	}
}
