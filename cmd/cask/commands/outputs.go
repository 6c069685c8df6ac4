package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newOutputsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "Record and query built outputs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "register <drv-path> <output> <path>",
		Short: "Record that an output of a recipe was built",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.RegisterOutput(cmd.Context(), args[0], args[1], args[2])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "query <drv-path>",
		Short: "Print every declared output of a recipe and where it was built",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outs, err := c.app.QueryOutputs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, o := range outs {
				path := o.Path
				if path == "" {
					path = "(not built)"
				}
				_, _ = fmt.Fprintf(w, "%s %s\n", o.Output, path)
			}
			return nil
		},
	})
	return cmd
}
