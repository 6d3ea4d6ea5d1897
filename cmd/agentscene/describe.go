package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene/internal/presentation/tui"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
)

var describeCmd = &cobra.Command{
	Use:   "describe [scene]",
	Short: "Describe one scene, or every scene, as rendered markdown",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		book, err := lib.Get(cfg.Editor)
		if err != nil {
			return err
		}

		presets := book.Scenes
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid scene %q", args[0])
			}
			p, err := book.Scene(n)
			if err != nil {
				return err
			}
			presets = []domain.ScenePreset{*p}
		}

		var sb strings.Builder
		for i := range presets {
			sb.WriteString(tui.SceneMarkdown(&presets[i], labeler(book)))
			sb.WriteString("\n")
		}

		text := sb.String()
		if raw, _ := cmd.Flags().GetBool("raw"); !raw {
			if rendered, err := tui.NewRenderer()(text); err == nil {
				text = rendered
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

// labeler names connection ends with the declared node kinds.
func labeler(book *scene.Book) func(domain.ConnectionRef) string {
	return func(c domain.ConnectionRef) string {
		kind := func(ref string) string {
			if d, ok := book.Decl(ref); ok {
				return string(d.Kind)
			}
			return "?"
		}
		return fmt.Sprintf("`%s.%s` (%s) → `%s.%s` (%s)",
			c.FromNode, c.FromPort, kind(c.FromNode), c.ToNode, c.ToPort, kind(c.ToNode))
	}
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown without terminal rendering")
}
