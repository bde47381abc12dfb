package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-compiler/internal/logger"
	"github.com/oshokin/alarm-compiler/internal/repository/project"
	"github.com/oshokin/alarm-compiler/internal/service/compile"
	"github.com/oshokin/alarm-compiler/internal/version"
)

// errUnknownLogLevel is returned for unsupported --log-level values.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// options collects the compile flags.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	options = &compile.Options{}

	// logLevel is the minimum level of log messages.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	logLevel string

	// rootCmd represents the base command.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	rootCmd = &cobra.Command{
		Use:           "alarm-compiler",
		Short:         "Compile alerts configuration into CloudFormation resources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}

	// compileCmd compiles the alarms of one service.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	compileCmd = &cobra.Command{
		Use:   "compile",
		Short: "Compile the alarms of a service manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options.Stdout = cmd.OutOrStdout()

			return compile.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-compiler CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Logger().Errorw("Command failed", "error", err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	flags := compileCmd.Flags()
	flags.StringVarP(&options.ProjectPath, "project", "p", project.DefaultManifestFilename, "path to the service manifest")
	flags.StringVarP(&options.ConfigPath, "config", "c", "", "alerts file (YAML or TOML) replacing custom.alerts")
	flags.StringVarP(&options.Stage, "stage", "s", "", "deployment stage, overrides provider.stage")
	flags.StringVarP(&options.OutputPath, "output", "o", compile.StdoutPath, "output file, - for standard output")
	flags.StringVar(&options.Format, "format", "", "output format: json or yaml (default from the output extension)")
	flags.StringVar(&options.TemplatePath, "template", "", "existing template to merge the resources into")
	flags.BoolVar(&options.Watch, "watch", false, "recompile whenever the manifest or alerts file changes")
	flags.StringVar(&options.MetricsFile, "metrics-file", "", "write compile statistics in the Prometheus textfile format")

	rootCmd.AddCommand(compileCmd)
}
