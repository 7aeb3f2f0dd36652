/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/batch"
)

func newBatchCmd(a *app) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch INPUT...",
		Short: "Convert many CSV files concurrently",
		Long: `Convert every listed CSV file, and every *.csv file in listed directories,
into the output directory. A failed file is reported and never stops the
others; the command exits non-zero when any file failed.

Examples:
  csv2stdf batch ./lots -d ./stdf
  csv2stdf batch a.csv b.csv c.csv -j 8 --meta lot.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir := a.cfg.OutputDir
			if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
				outputDir = v
			}
			workers := a.cfg.Workers
			if cmd.Flags().Changed("workers") {
				workers, _ = cmd.Flags().GetInt("workers")
			}

			rc, err := a.runConfig(cmd)
			if err != nil {
				return err
			}
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			jobs, err := batch.BuildJobs(inputs, outputDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outputDir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			report := batch.NewRunner(a.converter(), workers, a.logger).Run(cmd.Context(), jobs, rc)
			for _, o := range report.Failures() {
				if o.Skipped {
					cmd.PrintErrf("SKIPPED %s\n", o.Job.Input)
					continue
				}
				cmd.PrintErrf("FAILED  %s: %v\n", o.Job.Input, o.Err)
			}
			cmd.Printf("Converted %d of %d files into %s\n", report.Succeeded(), len(jobs), outputDir)
			return report.Err()
		},
	}

	batchCmd.Flags().StringP("output-dir", "d", "", "Directory for the STDF files (default from config)")
	batchCmd.Flags().IntP("workers", "j", 4, "Number of concurrent conversions (default from config)")
	addRunFlags(batchCmd)
	return batchCmd
}

// expandInputs replaces each directory argument by the CSV files it
// contains, sorted by name
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input directory: %w", err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		inputs = append(inputs, found...)
	}
	return inputs, nil
}
