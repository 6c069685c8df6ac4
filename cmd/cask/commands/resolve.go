package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <derived-path>",
		Short: "Resolve a derived path to the store paths it denotes",
		Long: "Resolves references such as /nix/store/…-a.drv!out or …-a.drv!out!bin.\n" +
			"With --best-effort a reference whose outputs are not all built is printed unchanged.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bestEffort, _ := cmd.Flags().GetBool("best-effort")

			paths, err := c.app.Resolve(cmd.Context(), args[0], bestEffort)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), paths)
			return nil
		},
	}
	cmd.Flags().BoolP("best-effort", "b", false, "Leave references with unbuilt outputs unresolved instead of failing")
	return cmd
}
