package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene/internal/presentation/tui"
)

var scenesCmd = &cobra.Command{
	Use:     "scenes",
	Aliases: []string{"ls"},
	Short:   "List the scene presets of the editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := openEditor()
		if err != nil {
			return err
		}
		defer ed.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", ed.Book().Title, ed.Name)
		tui.PrintScenes(out, ed.Scenes(), ed.ActiveScene())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenesCmd)
}
