package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tripscale",
	Short: "TripScale is a travel planning backend",
	Long: `A session-based travel planning service: plan trips directly from known
destinations, or let the AI collaborator suggest destinations from the
user's travel history.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
