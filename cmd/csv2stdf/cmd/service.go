/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/config"
)

const (
	serviceName     = "csv2stdf.service"
	defaultUnitPath = "/etc/systemd/system/" + serviceName
)

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=csv2stdf conversion server
After=network-online.target
Wants=network-online.target

[Service]
User={{.User}}
Group={{.User}}
ExecStart={{.Binary}} serve --config {{.ConfigPath}}
Restart=on-failure
NoNewPrivileges=true
UMask=0027
{{- range .WritePaths}}
ReadWritePaths={{.}}
{{- end}}

[Install]
WantedBy=multi-user.target
`))

type unitParams struct {
	User       string
	Binary     string
	ConfigPath string
	WritePaths []string
}

// runCommand runs a system command; tests replace it
var runCommand = func(stdout, stderr io.Writer, command string, args ...string) error {
	c := exec.Command(command, args...)
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

// systemdUnit renders the unit file serving with the config at configPath
func systemdUnit(cfg *config.Config, configPath, user, binary string) (string, error) {
	params := unitParams{
		User:       user,
		Binary:     binary,
		ConfigPath: configPath,
		WritePaths: []string{filepath.Dir(configPath)},
	}
	if cfg.HistoryDir != "" {
		params.WritePaths = append(params.WritePaths, cfg.HistoryDir)
	}
	if cfg.Metrics.Textfile != "" {
		params.WritePaths = append(params.WritePaths, filepath.Dir(cfg.Metrics.Textfile))
	}

	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render unit file: %w", err)
	}
	return buf.String(), nil
}

func newServiceCmd(a *app) *cobra.Command {
	serviceCmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the csv2stdf server as a systemd service",
		Long: `Manage the csv2stdf REST server as a systemd service. The service runs
"csv2stdf serve" with the configuration file given by --config.`,
	}

	unitCmd := &cobra.Command{
		Use:   "unit",
		Short: "Print the systemd unit file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := a.unit(cmd)
			if err != nil {
				return err
			}
			cmd.Print(unit)
			return nil
		},
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install and enable the systemd service",
		Long: `Write the systemd unit file, reload systemd and enable the service.

Examples:
  sudo csv2stdf service install --config /etc/csv2stdf/config.yaml --user csv2stdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPath, _ := cmd.Flags().GetString("unit-path")
			startNow, _ := cmd.Flags().GetBool("start")

			unit, err := a.unit(cmd)
			if err != nil {
				return err
			}
			if err := os.WriteFile(unitPath, []byte(unit), 0644); err != nil {
				return fmt.Errorf("failed to write unit file: %w", err)
			}

			steps := [][]string{{"daemon-reload"}, {"enable", serviceName}}
			if startNow {
				steps = append(steps, []string{"start", serviceName})
			}
			for _, step := range steps {
				if err := runCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), "systemctl", step...); err != nil {
					return fmt.Errorf("systemctl %s: %w", step[0], err)
				}
			}

			cmd.Printf("Service %s installed at %s\n", serviceName, unitPath)
			return nil
		},
	}
	installCmd.Flags().String("user", "csv2stdf", "User to run the service as")
	installCmd.Flags().String("unit-path", defaultUnitPath, "Where to write the unit file")
	installCmd.Flags().Bool("start", true, "Start the service after installation")

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Stop, disable and remove the systemd service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPath, _ := cmd.Flags().GetString("unit-path")

			_ = runCommand(io.Discard, io.Discard, "systemctl", "stop", serviceName) // may already be stopped
			if err := runCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), "systemctl", "disable", serviceName); err != nil {
				cmd.PrintErrf("Warning: could not disable service: %v\n", err)
			}
			if err := os.Remove(unitPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to remove unit file: %w", err)
			}
			if err := runCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), "systemctl", "daemon-reload"); err != nil {
				return fmt.Errorf("systemctl daemon-reload: %w", err)
			}

			cmd.Printf("Service %s uninstalled\n", serviceName)
			return nil
		},
	}
	uninstallCmd.Flags().String("unit-path", defaultUnitPath, "Unit file to remove")

	unitCmd.Flags().String("user", "csv2stdf", "User to run the service as")
	serviceCmd.AddCommand(unitCmd, installCmd, uninstallCmd)
	return serviceCmd
}

// unit renders the unit for the config file this invocation loaded
func (a *app) unit(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("invalid config path: %w", err)
	}

	binary, err := os.Executable()
	if err != nil {
		binary = "/usr/local/bin/csv2stdf"
	}
	return systemdUnit(a.cfg, configPath, user, binary)
}
