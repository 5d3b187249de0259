package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "concierge",
		Short: "Restaurant recommendations for a concierge desk",
		Long: `Concierge matches free-text client requests against the venue catalog,
answers in the client's language and flags venues outside the requested area.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMCPCmd(),
		newAskCmd(),
		newCatalogCmd(),
		newHashPasswordCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "concierge version %s\n", version)
		},
	}
}
