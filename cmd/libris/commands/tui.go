package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/libris/internal/client"
	"github.com/pkordes/libris/internal/tui"
)

var apiURL string

// tuiCmd opens the terminal client
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a running Libris server from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(apiURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := c.Health(ctx); err != nil {
			return fmt.Errorf("server at %s is not reachable: %w", apiURL, err)
		}

		return tui.Run(c)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "Base URL of the Libris API")
}
