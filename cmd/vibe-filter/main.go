// Package main provides the vibe-filter command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-filter/internal/filter"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every subcommand needs.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
	quiet  bool
}

// usageError marks errors caused by how the tool was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs wraps an argument validator so its errors exit with ExitUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: zap.NewNop()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var uerr usageError
	if errors.As(err, &uerr) || errors.Is(err, filter.ErrInvalidFilter) {
		fmt.Fprintf(stderr, "Run 'vibe-filter --help' for usage.\n")
		return ExitUsage
	}
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Hint: Check that the file path is correct\n")
	}
	return ExitError
}

func newRootCmd(a *app) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "vibe-filter",
		Short: "Index and filter VCF files",
		Long: `vibe-filter indexes a VCF file once and then filters its records by
INFO fields, standard columns, genomic regions and sample genotypes.`,
		Example: `  # Build the index (written next to the file as <file>.vcf-index)
  vibe-filter index input.vcf.gz

  # List the filterable fields
  vibe-filter fields input.vcf.gz

  # Filter and save every match
  vibe-filter filter input.vcf.gz --where "DP >= 20" --sample "ANY S1,S2 HET,HOM_VAR" -o out.vcf.gz`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				viper.Set("log.level", logLevel)
			}
			logger, err := newLogger(viper.GetString("log.level"), a.stderr)
			if err != nil {
				return usageError{err}
			}
			a.logger = logger
			return nil
		},
	}
	root.SetVersionTemplate("vibe-filter version {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Hide progress bars")

	root.AddCommand(newIndexCmd(a))
	root.AddCommand(newFieldsCmd(a))
	root.AddCommand(newFilterCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// newLogger builds a console logger writing to w at the named level.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
