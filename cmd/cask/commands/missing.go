package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newMissingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing <drv-path>...",
		Short: "List the outputs needed to build recipes that are not built yet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			missing, err := c.app.Missing(cmd.Context(), args)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), missing)
			return nil
		},
	}
}
