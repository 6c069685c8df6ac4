package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newDrvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drv",
		Short: "Manage recipes",
	}
	cmd.AddCommand(c.newDrvAddCmd())
	cmd.AddCommand(c.newDrvShowCmd())
	cmd.AddCommand(c.newDrvHashCmd())
	cmd.AddCommand(c.newDrvPathsCmd())
	cmd.AddCommand(c.newDrvResolveCmd())
	return cmd
}

func (c *CLI) newDrvAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file|->",
		Short: "Store a recipe given in JSON form and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to read recipe"), "file", args[0])
			}

			p, err := c.app.AddRecipe(cmd.Context(), data)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func (c *CLI) newDrvShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <drv-path>",
		Short: "Print a stored recipe in JSON form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.ShowRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func (c *CLI) newDrvResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <drv-path>",
		Short: "Print a recipe with its input recipes replaced by built paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.ResolveRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func (c *CLI) newDrvHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <drv-path>...",
		Short: "Print the modulo hash of recipes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closure, _ := cmd.Flags().GetBool("closure")

			hashes, err := c.app.HashRecipe(cmd.Context(), args, closure)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, h := range hashes {
				for _, o := range h.Outputs {
					_, _ = fmt.Fprintf(w, "%s!%s %s %s\n", h.DrvPath, o.Output, o.Hash, h.Kind)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolP("closure", "c", false, "Also hash every recipe the given ones depend on")
	return cmd
}

func (c *CLI) newDrvPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths <drv-path>",
		Short: "Print the statically known output paths of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := c.app.RecipePaths(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range paths {
				path := p.Path
				if path == "" {
					path = "(known after build)"
				}
				_, _ = fmt.Fprintf(w, "%s %s\n", p.Output, path)
			}
			return nil
		},
	}
}
