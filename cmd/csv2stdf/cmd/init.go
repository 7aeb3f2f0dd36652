/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/config"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file with a generated API key for the
REST server. The file is written to --config, or to the default path.

Examples:
  csv2stdf init
  csv2stdf init --config ./csv2stdf.yaml --output-dir ./stdf --print-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}
			if config.ConfigExists(configPath) && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
			}

			cfg, err := config.BootstrapConfig(configPath, outputDir)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration created at %s\n", configPath)
			if printKey {
				cmd.Printf("API Key: %s\n", cfg.Server.APIKey)
			}
			return nil
		},
	}

	initCmd.Flags().String("output-dir", "", "Default output directory for STDF files")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
	return initCmd
}
