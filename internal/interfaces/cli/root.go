// Package cli implements the molstore command line tool: schema migrations,
// CSV ingestion and structure searches run directly against the datastores.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/qaioz/molstore/internal/app"
	"github.com/qaioz/molstore/internal/application/molecule"
	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/database/postgres"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const defaultConfigDir = "configs"

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputText  = "text"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Timeout      time.Duration
}

// Migrator applies schema migrations.  *postgres.Migrator implements it.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (version uint, dirty bool, err error)
	Force(version int) error
	Close() error
}

// Dependencies opens the backends commands run against.  Each constructor
// returns a release function along with its value.
type Dependencies struct {
	NewMigrator        func(cfg *config.Config, logger logging.Logger) (Migrator, error)
	NewMoleculeService func(cfg *config.Config, logger logging.Logger) (molecule.Service, func(), error)
}

// DefaultDependencies connects to the datastores named in the config.
func DefaultDependencies() Dependencies {
	return Dependencies{
		NewMigrator: func(cfg *config.Config, logger logging.Logger) (Migrator, error) {
			return postgres.NewMigrator(cfg.Database, logger)
		},
		NewMoleculeService: func(cfg *config.Config, logger logging.Logger) (molecule.Service, func(), error) {
			infra, err := app.NewInfrastructure(cfg, logger, "cli")
			if err != nil {
				return nil, nil, err
			}
			return infra.MoleculeService(), infra.Close, nil
		},
	}
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "molstore",
		Short: "molstore CLI for the molecule and drug store",
		Long: "molstore manages the molecule store schema, bulk-loads molecules from CSV\n" +
			"and runs substructure and superstructure searches from the terminal.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: configs/config.<env>.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputTable, "output format (table, json, text)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 10*time.Minute, "global operation timeout")

	cmd.AddCommand(
		NewMigrateCmd(deps),
		NewImportCmd(deps),
		NewSearchCmd(deps),
		NewTaskCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch opts.OutputFormat {
	case OutputTable, OutputJSON, OutputText:
	default:
		return errors.New(errors.ErrCodeValidation, "invalid output format").
			WithDetail(fmt.Sprintf("%q (must be table, json or text)", opts.OutputFormat))
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := config.Resolve(opts.ConfigPath, defaultConfigDir)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// operationContext bounds a command's work by the --timeout flag.
func operationContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute(deps Dependencies) error {
	rootCmd := NewRootCommand(deps)
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, data)
	case OutputTable:
		if tp, ok := data.(tableProvider); ok {
			return printTable(cmd, tp)
		}
	}
	return printText(cmd, data)
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs one tab-separated line per row, or the value itself.
func printText(cmd *cobra.Command, data interface{}) error {
	out := cmd.OutOrStdout()
	switch v := data.(type) {
	case tableProvider:
		for _, row := range v.TableRows() {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
	case string:
		fmt.Fprintln(out, v)
	case fmt.Stringer:
		fmt.Fprintln(out, v.String())
	default:
		fmt.Fprintf(out, "%+v\n", v)
	}
	return nil
}

func printTable(cmd *cobra.Command, tp tableProvider) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header(tp.TableHeaders())
	for _, row := range tp.TableRows() {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// printNotice writes an informational message to stdout.
func printNotice(cmd *cobra.Command, msg string) {
	color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), msg)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, map[string]string{
				"version":    Version,
				"commit":     GitCommit,
				"build_date": BuildDate,
			})
		},
	}
}

//Personal.AI order the ending
