package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the graph as a Mermaid diagram",
	Long: `Builds the editor, optionally loads a scene, and prints the graph as a
Mermaid flowchart (graph LR). Hidden nodes are left out unless --hidden is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := openEditor()
		if err != nil {
			return err
		}
		defer ed.Close()

		title := ed.Book().Title
		if n, _ := cmd.Flags().GetInt("scene"); n > 0 {
			res, err := ed.LoadScene(cmd.Context(), n)
			if err != nil {
				return err
			}
			title = res.Name
		}
		hidden, _ := cmd.Flags().GetBool("hidden")

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(ed.Snapshot(), &graph.GraphOverlay{
			Title:      title,
			Refs:       ed.Refs(),
			ShowHidden: hidden,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().IntP("scene", "s", 0, "Scene to load before exporting")
	graphCmd.Flags().Bool("hidden", false, "Include hidden nodes")
}
