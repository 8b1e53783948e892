package cli

import (
	"github.com/spf13/cobra"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/client"
)

const defaultServerURL = "http://localhost:8000"

// taskView renders a task status.
type taskView struct {
	*client.TaskStatus
}

func (v taskView) TableHeaders() []string { return []string{"Status", "Error"} }

func (v taskView) TableRows() [][]string {
	return [][]string{{v.Status, v.Error}}
}

// NewTaskCmd creates the task command.  It talks to a running API server,
// since background searches only exist there.
func NewTaskCmd() *cobra.Command {
	var server string

	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect background substructure searches on a running server",
	}
	taskCmd.PersistentFlags().StringVar(&server, "server", defaultServerURL, "molstore API base URL")

	statusCmd := &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Show the current state of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, server, func(c *client.Client, cliCtx *CLIContext) error {
				ctx, cancel := operationContext(cmd, cliCtx)
				defer cancel()

				status, err := c.Tasks().Get(ctx, args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, taskView{status})
			})
		},
	}

	waitCmd := &cobra.Command{
		Use:   "wait TASK_ID",
		Short: "Wait for a task and print the molecules it found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, server, func(c *client.Client, cliCtx *CLIContext) error {
				ctx, cancel := operationContext(cmd, cliCtx)
				defer cancel()

				status, err := c.Tasks().Wait(ctx, args[0])
				if err != nil {
					return err
				}
				cliCtx.Logger.Info("task finished",
					logging.String("task_id", args[0]),
					logging.String("status", status.Status))

				mols, err := status.Molecules()
				if err != nil {
					return err
				}
				if len(mols) == 0 && cliCtx.OutputFormat != OutputJSON {
					printNotice(cmd, "No molecules found.")
					return nil
				}
				return PrintResult(cmd, remoteMoleculeRows(mols))
			})
		},
	}

	taskCmd.AddCommand(statusCmd, waitCmd)
	return taskCmd
}

// remoteMoleculeRows renders molecules returned by the API.
type remoteMoleculeRows []client.Molecule

func (m remoteMoleculeRows) TableHeaders() []string { return moleculeRows(nil).TableHeaders() }

func (m remoteMoleculeRows) TableRows() [][]string {
	rows := make([][]string, 0, len(m))
	for _, mol := range m {
		name := ""
		if mol.Name != nil {
			name = *mol.Name
		}
		rows = append(rows, []string{
			formatID(mol.MoleculeID),
			truncateString(mol.SMILES, maxSMILESColumn),
			name,
			formatMass(mol.Mass),
		})
	}
	return rows
}

func withClient(cmd *cobra.Command, server string, fn func(*client.Client, *CLIContext) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	c, err := client.NewClient(server, client.WithUserAgent("molstore-cli/"+Version))
	if err != nil {
		return err
	}
	return fn(c, cliCtx)
}

//Personal.AI order the ending
