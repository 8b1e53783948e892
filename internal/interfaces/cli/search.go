package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qaioz/molstore/internal/application/molecule"
	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

const maxSMILESColumn = 60

// moleculeRows renders search hits.
type moleculeRows []*domainMol.Molecule

func (m moleculeRows) TableHeaders() []string {
	return []string{"ID", "SMILES", "Name", "Mass"}
}

func (m moleculeRows) TableRows() [][]string {
	rows := make([][]string, 0, len(m))
	for _, mol := range m {
		name := ""
		if mol.Name != nil {
			name = *mol.Name
		}
		rows = append(rows, []string{
			formatID(mol.ID),
			truncateString(mol.SMILES, maxSMILESColumn),
			name,
			formatMass(mol.Mass),
		})
	}
	return rows
}

type searchFunc func(svc molecule.Service, ctx context.Context, smiles string, limit *int) ([]*domainMol.Molecule, error)

// NewSearchCmd creates the search command.  Both directions run in-process,
// so substructure searches return results instead of a task id.
func NewSearchCmd(deps Dependencies) *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search stored molecules by structure",
	}

	searchCmd.AddCommand(
		newStructureSearchCmd(deps, "substructures", []string{"sub"},
			"Find stored molecules that contain the query as a substructure",
			molecule.Service.Substructures),
		newStructureSearchCmd(deps, "superstructures", []string{"super"},
			"Find stored molecules that are substructures of the query",
			molecule.Service.Superstructures),
	)
	return searchCmd
}

func newStructureSearchCmd(deps Dependencies, use string, aliases []string, short string, search searchFunc) *cobra.Command {
	var (
		smiles string
		limit  int
	)

	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.Newf(errors.ErrCodeValidation, "limit must not be negative, got %d", limit)
			}
			var limitPtr *int
			if limit > 0 {
				limitPtr = &limit
			}

			return withMoleculeService(cmd, deps, func(svc molecule.Service, cliCtx *CLIContext) error {
				ctx, cancel := operationContext(cmd, cliCtx)
				defer cancel()

				cliCtx.Logger.Info("starting structure search",
					logging.String("direction", use),
					logging.String("smiles", smiles),
					logging.Int("limit", limit))

				mols, err := search(svc, ctx, smiles, limitPtr)
				if err != nil {
					return err
				}
				if len(mols) == 0 && cliCtx.OutputFormat != OutputJSON {
					printNotice(cmd, "No molecules found.")
					return nil
				}
				if mols == nil {
					mols = []*domainMol.Molecule{}
				}
				return PrintResult(cmd, moleculeRows(mols))
			})
		},
	}

	cmd.Flags().StringVar(&smiles, "smiles", "", "query SMILES string (required)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	_ = cmd.MarkFlagRequired("smiles")
	return cmd
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func formatMass(mass float64) string { return fmt.Sprintf("%.3f", mass) }

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

//Personal.AI order the ending
