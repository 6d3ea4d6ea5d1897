package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every scene book",
	Long:  `Checks each book against the node catalog, looks for cycles in every scene and reports nodes no scene connects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}

		reports, err := validator.ValidateLibrary(lib, nil)
		out := cmd.OutOrStdout()
		for _, r := range reports {
			status := "ok"
			if !r.OK() {
				status = "invalid"
			}
			fmt.Fprintf(out, "%s: %s\n", r.Editor, status)
			for _, e := range r.Errors {
				fmt.Fprintf(out, "  error: %v\n", e)
			}
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
