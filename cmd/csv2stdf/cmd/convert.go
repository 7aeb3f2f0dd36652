/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/batch"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/convert"
)

const stdio = "-"

func newConvertCmd(a *app) *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert INPUT",
		Short: "Convert one CSV file to STDF",
		Long: `Convert one CSV file to an STDF v4 file.

The output is written to the configured output directory as INPUT.stdf
unless --output is given. Use "-" as INPUT to read standard input and
"--output -" to write the STDF stream to standard output.

Examples:
  csv2stdf convert lot42.csv
  csv2stdf convert lot42.csv -o out/lot42.stdf --meta lot42.json --head 2
  cat lot42.csv | csv2stdf convert - -o - > lot42.stdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output, _ := cmd.Flags().GetString("output")

			rc, err := a.runConfig(cmd)
			if err != nil {
				return err
			}
			c := a.converter()

			if input == stdio || output == stdio {
				return convertStream(cmd, c, input, output, rc)
			}

			if output == "" {
				base := filepath.Base(input)
				output = filepath.Join(a.cfg.OutputDir, strings.TrimSuffix(base, filepath.Ext(base))+batch.OutputExt)
			}
			res, err := c.ConvertFile(input, output, rc)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}

	convertCmd.Flags().StringP("output", "o", "", "Output STDF path, or - for standard output")
	addRunFlags(convertCmd)
	return convertCmd
}

// convertStream handles conversions where either side is standard I/O
func convertStream(cmd *cobra.Command, c *convert.Converter, input, output string, rc assemble.RunConfig) error {
	if input != stdio || output != stdio {
		return fmt.Errorf("standard input and output must be used together (input %q, output %q)", input, output)
	}
	if rc.InputName == "" {
		rc.InputName = stdio
	}
	res, err := c.Convert(cmd.InOrStdin(), cmd.OutOrStdout(), rc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Converted %d devices (%d good), disposition %s\n",
		res.Devices, res.Good, res.Disposition())
	return nil
}

func printResult(cmd *cobra.Command, res *convert.Result) {
	cmd.Printf("Converted %s -> %s: %d devices, %d good, %d records, disposition %s\n",
		res.Input, res.Output, res.Devices, res.Good, res.Records, res.Disposition())
	if len(res.UnmappedOverrides) > 0 {
		cmd.PrintErrf("Ignored unknown MIR fields: %s\n", strings.Join(res.UnmappedOverrides, ", "))
	}
}
