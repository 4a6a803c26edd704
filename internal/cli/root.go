// Package cli provides the command-line interface for Workbench.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/slatehq/workbench/internal/cli/commands"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "workbench",
		Short: "Workbench - workbook state service",
		Long: `Workbench manages analytics workbooks: queries, charts, and dashboards.

It keeps in-memory workbook sessions in sync with a document store,
auto-saves dirty state, and resolves dependencies between linked queries.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().String("config", "", "path to config file (default: workbench.yaml)")

	rootCmd.AddCommand(
		commands.NewServeCmd(),
		commands.NewVersionCmd(Version, BuildDate, GitCommit),
	)

	return rootCmd
}
