/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/config"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/convert"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/di"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/logging"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/metrics"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/storage"
)

var container *di.Container

// SetContainer sets the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// app is the state shared by the commands of one invocation
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	history *storage.HistoryStore

	metricsFile string
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "csv2stdf",
		Short: "csv2stdf - CSV to STDF v4 converter",
		Long: `csv2stdf converts tabular semiconductor test results (one column per test,
five header rows, one row per device) into STDF v4 binary files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to configuration file (default "+config.GetDefaultConfigPath()+" when present)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (console or json)")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file when the command finishes")
	flags.String("history-dir", "", "Directory of the conversion history database")

	rootCmd.AddCommand(newConvertCmd(a), newBatchCmd(a), newServeCmd(a), newInitCmd(), newServiceCmd(a))
	return rootCmd
}

// setup loads configuration and builds the logger, metrics and history
func (a *app) setup(cmd *cobra.Command) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	// init writes the config file, so it never reads one
	cfg := config.DefaultConfig()
	if cmd.Name() != "init" {
		var err error
		if cfg, err = loadConfig(cmd); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.Logging.Level = "debug"
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if v, _ := flags.GetString("metrics-file"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v, _ := flags.GetString("history-dir"); v != "" {
		cfg.HistoryDir = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.metricsFile = cfg.Metrics.Textfile

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	a.metrics = metrics.New()

	if cfg.HistoryDir != "" && cmd.Name() != "init" {
		history, err := container.GetHistoryOpener()(cfg.HistoryDir)
		if err != nil {
			return err
		}
		a.history = history
	}
	return nil
}

// loadConfig reads --config, or the default path when it exists
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
		if !config.ConfigExists(path) {
			return config.DefaultConfig(), nil
		}
	}
	return config.LoadConfig(path)
}

// converter builds a converter wired to the logger, metrics and history
func (a *app) converter() *convert.Converter {
	opts := []convert.Option{convert.WithLogger(a.logger), convert.WithMetrics(a.metrics)}
	if a.history != nil {
		opts = append(opts, convert.WithHistory(a.history))
	}
	return container.GetConverterFactory()(opts...)
}

// close flushes metrics and releases the history database
func (a *app) close() error {
	var errs []error
	if a.metricsFile != "" && a.metrics != nil {
		if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics file: %w", err))
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

// run executes the command line in args
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil {
		fmt.Fprintln(stderr, "Error:", cerr)
		err = errors.Join(err, cerr)
	}
	return err
}

// Execute runs the root command with the process arguments and exits
// non-zero on failure. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
