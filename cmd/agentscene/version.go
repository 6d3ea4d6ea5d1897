package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agentscene",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "agentscene version %s\n", agentscene.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
