package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

// migrationStatus is the result of "migrate status".
type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) TableHeaders() []string { return []string{"Version", "Dirty"} }

func (s migrationStatus) TableRows() [][]string {
	return [][]string{{strconv.FormatUint(uint64(s.Version), 10), strconv.FormatBool(s.Dirty)}}
}

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd(deps Dependencies) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				PrintSuccess(cmd, "migrations applied")
				return nil
			})
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.New(errors.ErrCodeValidation, "steps must be at least 1")
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
				return nil
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				version, dirty, err := m.Status()
				if err != nil {
					return err
				}
				return PrintResult(cmd, migrationStatus{Version: version, Dirty: dirty})
			})
		},
	}

	forceCmd := &cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(errors.ErrCodeValidation, "version must be an integer").WithDetail(args[0])
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				PrintSuccess(cmd, fmt.Sprintf("schema version forced to %d", version))
				return nil
			})
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd, forceCmd)
	return migrateCmd
}

// withMigrator opens a migrator, runs fn and closes it.
func withMigrator(cmd *cobra.Command, deps Dependencies, fn func(Migrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	m, err := deps.NewMigrator(cliCtx.Config, cliCtx.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open migrator")
	}
	defer func() {
		if err := m.Close(); err != nil {
			cliCtx.Logger.Warn("migrator close failed", logging.Err(err))
		}
	}()
	return fn(m)
}

//Personal.AI order the ending
