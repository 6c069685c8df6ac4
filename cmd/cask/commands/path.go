package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/cask/internal/app"
)

func (c *CLI) newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <content-address> <name>",
		Short: "Compute the store path of a content-addressed object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, _ := cmd.Flags().GetStringArray("ref")
			self, _ := cmd.Flags().GetBool("self")

			p, err := c.app.StorePath(cmd.Context(), app.StorePathRequest{
				ContentAddress: args[0],
				Name:           args[1],
				References:     refs,
				Self:           self,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringArrayP("ref", "r", nil, "Store path the object references (repeatable)")
	cmd.Flags().Bool("self", false, "The object references itself")
	return cmd
}
