package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene/internal/presentation/graph"
)

var loadCmd = &cobra.Command{
	Use:   "load <scene>",
	Short: "Load a scene preset and print the resulting graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid scene %q", args[0])
		}

		ed, err := openEditor()
		if err != nil {
			return err
		}
		defer ed.Close()

		res, err := ed.LoadScene(cmd.Context(), n)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			outputs, evalErr := ed.Evaluation()
			payload := map[string]any{"scene": res, "outputs": outputs}
			if evalErr != nil {
				payload["evaluation_error"] = evalErr.Error()
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "mermaid":
			fmt.Fprint(out, graph.GenerateMermaid(ed.Snapshot(), &graph.GraphOverlay{
				Title: res.Name,
				Refs:  ed.Refs(),
			}))
			return nil
		default:
			fmt.Fprintf(out, "Loaded scene %d: %s (%d connections)\n", res.Scene, res.Name, len(res.Connections))
			fmt.Fprintf(out, "Camera at %s looking at %s\n", res.Camera.Position, res.Camera.Target)
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringP("format", "f", "text", "Output format: text, json or mermaid")
}
