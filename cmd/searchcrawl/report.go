package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/searchcrawl/internal/database"
	"github.com/nao1215/searchcrawl/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the crawl store",
		Long: `Report prints a summary of everything stored so far: page count, pages per
depth and per detected language, and downloaded images and videos.

Examples:
  # Markdown summary with a mermaid pie chart
  searchcrawl report

  # JSON for other tools
  searchcrawl report -f json

  # Write the summary to a file
  searchcrawl report -o reports/summary.md

  # Write the file and print the same report
  searchcrawl report -o reports/summary.md --tee`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", report.FormatMarkdown,
		"Output format: markdown, json or text")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the report to standard output")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	tee, err := cmd.Flags().GetBool("tee")
	if err != nil {
		return err
	}

	// The file is written only once the whole report rendered, so a bad
	// format or a failed query never leaves a partial file behind.
	var fileBuf bytes.Buffer
	w, err := newReportWriter(format, cmd.OutOrStdout(), &fileBuf, outputPath != "", tee)
	if err != nil {
		return err
	}

	// Reporting never creates an empty store.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DataDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	summary, err := db.Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to summarize store: %w", err)
	}
	if _, err := w.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if outputPath == "" {
		return nil
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, fileBuf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if !tee {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outputPath)
	}
	return nil
}

// newReportWriter returns the writer for format. Without a file the report
// goes to stdout; with a file it goes to fileOut, and also to stdout when
// tee is set.
func newReportWriter(format string, stdout, fileOut io.Writer, toFile, tee bool) (report.Writer, error) {
	if !toFile {
		return report.NewWriter(format, stdout)
	}
	fw, err := report.NewWriter(format, fileOut)
	if err != nil {
		return nil, err
	}
	if !tee {
		return fw, nil
	}
	sw, err := report.NewWriter(format, stdout)
	if err != nil {
		return nil, err
	}
	return report.NewMultiWriter(fw, sw), nil
}
