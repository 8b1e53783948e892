package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qaioz/molstore/internal/application/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

// NewImportCmd creates the import command, the terminal counterpart of
// POST /molecules/upload.
func NewImportCmd(deps Dependencies) *cobra.Command {
	var noValidate bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk-load molecules from a CSV file",
		Long: "Load molecules from a CSV file with the columns smiles,name.\n" +
			"By default every row is validated and rows that fail are skipped;\n" +
			"--no-validate inserts rows in batches without checking them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMoleculeService(cmd, deps, func(svc molecule.Service, cliCtx *CLIContext) error {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open CSV file")
				}
				defer f.Close()

				ctx, cancel := operationContext(cmd, cliCtx)
				defer cancel()

				start := time.Now()
				n, err := svc.ImportCSV(ctx, f, !noValidate)
				if err != nil {
					return err
				}
				cliCtx.Logger.Info("molecules imported",
					logging.String("file", args[0]),
					logging.Int64("count", n),
					logging.Duration("elapsed", time.Since(start)))

				if cliCtx.OutputFormat == OutputJSON {
					return PrintResult(cmd, map[string]int64{"number_of_molecules_added": n})
				}
				PrintSuccess(cmd, fmt.Sprintf("imported %d molecule(s)", n))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip per-row validation and insert in batches")
	return cmd
}

// withMoleculeService opens the molecule service, runs fn and releases it.
func withMoleculeService(cmd *cobra.Command, deps Dependencies, fn func(molecule.Service, *CLIContext) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	svc, release, err := deps.NewMoleculeService(cliCtx.Config, cliCtx.Logger)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}
	return fn(svc, cliCtx)
}

//Personal.AI order the ending
