/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/api"
)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the csv2stdf REST API server.

POST a CSV table to /api/v1/convert to receive the STDF stream. When an API
key is configured every /api/v1 route requires it in the X-API-Key header.
Prometheus metrics are served on /metrics and API documentation on /swagger/.

Examples:
  csv2stdf serve --port 8080
  csv2stdf serve --bind 0.0.0.0 --api-key mysecretkey --history-dir ./history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			server := a.cfg.Server
			if flags.Changed("bind") {
				server.Bind, _ = flags.GetString("bind")
			}
			if flags.Changed("port") {
				server.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("api-key") {
				server.APIKey, _ = flags.GetString("api-key")
			}
			if flags.Changed("max-upload-bytes") {
				server.MaxUploadBytes, _ = flags.GetInt64("max-upload-bytes")
			}

			rc, err := a.runConfig(cmd)
			if err != nil {
				return err
			}

			deps := api.Dependencies{
				Converter: a.converter(),
				Metrics:   a.metrics,
				Logger:    a.logger,
			}
			if a.history != nil {
				deps.History = a.history
			}
			if server.APIKey == "" {
				a.logger.Warn("API key not configured, authentication disabled")
			}
			a.logger.Debug("Server configuration",
				zap.String("bind", server.Bind),
				zap.Int("port", server.Port),
				zap.Int64("max_upload_bytes", server.MaxUploadBytes))

			starter := container.GetServerFactory().CreateServerStarter()
			return starter.StartServer(cmd.Context(), deps, api.ServerConfig{
				Bind:           server.Bind,
				Port:           server.Port,
				APIKey:         server.APIKey,
				MaxUploadBytes: server.MaxUploadBytes,
				Run:            rc,
			})
		},
	}

	flags := serveCmd.Flags()
	flags.String("bind", "127.0.0.1", "Address to bind to")
	flags.IntP("port", "p", 8080, "Port to listen on")
	flags.String("api-key", "", "API key required in X-API-Key (default from config)")
	flags.Int64("max-upload-bytes", 32<<20, "Largest accepted request body")
	flags.String("meta", "", "Metadata file applied to every request")
	return serveCmd
}
