package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/cask/internal/app"
)

func (c *CLI) newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Hash a file or directory and compute its store path",
		Long: "Serializes a filesystem object with the given method, hashes it and prints\n" +
			"its store path, its content address and the references found in it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			method, _ := cmd.Flags().GetString("method")
			algo, _ := cmd.Flags().GetString("algo")
			self, _ := cmd.Flags().GetString("self")
			refs, _ := cmd.Flags().GetStringArray("ref")

			res, err := c.app.Ingest(cmd.Context(), app.IngestRequest{
				Path:         args[0],
				Name:         name,
				Method:       method,
				Algo:         algo,
				SelfHashPart: self,
				Candidates:   refs,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, res.Path)
			_, _ = fmt.Fprintln(w, res.ContentAddress)
			for _, r := range res.References {
				_, _ = fmt.Fprintln(w, "reference "+r)
			}
			if res.Self {
				_, _ = fmt.Fprintln(w, "reference self")
			}
			return nil
		},
	}
	cmd.Flags().StringP("name", "n", "", "Name of the store object (default: base name of the path)")
	cmd.Flags().StringP("method", "m", "nar", "Ingestion method: flat, nar, text, git or ipfs")
	cmd.Flags().StringP("algo", "a", "sha256", "Hash algorithm")
	cmd.Flags().String("self", "", "Hash part the object was built under, hashed as a self reference")
	cmd.Flags().StringArrayP("ref", "r", nil, "Store path the object may reference (repeatable)")
	return cmd
}
