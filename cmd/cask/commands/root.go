// Package commands implements the CLI commands for cask.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/build"
)

// CLI represents the command line interface for cask.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	StorePath(ctx context.Context, req app.StorePathRequest) (string, error)
	Ingest(ctx context.Context, req app.IngestRequest) (app.IngestResult, error)
	AddRecipe(ctx context.Context, data []byte) (string, error)
	ShowRecipe(ctx context.Context, drvPath string) ([]byte, error)
	ResolveRecipe(ctx context.Context, drvPath string) ([]byte, error)
	HashRecipe(ctx context.Context, drvPaths []string, closure bool) ([]app.RecipeHash, error)
	RecipePaths(ctx context.Context, drvPath string) ([]app.OutputPath, error)
	RegisterOutput(ctx context.Context, drvPath, output, path string) error
	QueryOutputs(ctx context.Context, drvPath string) ([]app.OutputPath, error)
	Resolve(ctx context.Context, ref string, bestEffort bool) ([]string, error)
	Missing(ctx context.Context, drvPaths []string) ([]string, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cask",
		Short:         "Addressing and identity for a content-addressed store",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newPathCmd())
	rootCmd.AddCommand(c.newIngestCmd())
	rootCmd.AddCommand(c.newDrvCmd())
	rootCmd.AddCommand(c.newOutputsCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newMissingCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the stream "drv add -" reads from. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, l)
	}
}
