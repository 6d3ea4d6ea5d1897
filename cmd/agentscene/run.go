package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Switch scenes interactively",
	Long: `Starts an interactive prompt. Type a scene number to load it, "list" to
show the scenes, "graph" for a Mermaid export and "quit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initial, _ := cmd.Flags().GetInt("scene")
		ed, err := openEditor(agentscene.WithInitialScene(initial))
		if err != nil {
			return err
		}
		defer ed.Close()

		headless, _ := cmd.Flags().GetBool("headless")
		interactive := !headless && tui.IsTerminal(os.Stdin)

		r := agentscene.NewRunner()
		r.Input = cmd.InOrStdin()
		r.Output = cmd.OutOrStdout()
		r.Headless = headless
		if interactive {
			tui.PrintBanner(r.Output, agentscene.Version())
			r.Renderer = tui.NewRenderer()
		}
		return r.Run(cmd.Context(), ed)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("scene", 0, "Scene to load on start")
	runCmd.Flags().Bool("headless", false, "Suppress prompts and banners (for piped input)")
}
