package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X ...commands.version=...".
var version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "libris",
	Short: "Libris - a small library catalog and lending service",
	Long: `Libris keeps a catalog of books and tracks who has borrowed them.

Commands:
  serve    - Run the HTTP API
  migrate  - Apply or roll back the PostgreSQL schema
  tui      - Browse a running server from the terminal`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
