package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/agentscene"
	"github.com/aretw0/agentscene/internal/config"
	"github.com/aretw0/agentscene/internal/logging"
	"github.com/aretw0/agentscene/pkg/scene"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agentscene",
	Short: "agentscene switches AI agent architecture diagrams between scene presets",
	Long: `agentscene keeps a typed node graph of tools, knowledge sources, models,
agents and documents, and rewires it in one step when a scene preset is loaded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger = logging.NewWithFormat(os.Stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", os.Getenv("AGENTSCENE_CONFIG"), "Path to a YAML config file")
	flags.StringP("editor", "e", "", "Editor to work on (architecture, pluggedin, ...)")
	flags.String("presets-dir", "", "Directory of scene books replacing the built-in ones")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
}

// applyFlags lets explicitly set flags override file values.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	override := func(name string, target *string) {
		if cmd.Flags().Changed(name) {
			*target, _ = cmd.Flags().GetString(name)
		}
	}
	override("editor", &c.Editor)
	override("presets-dir", &c.PresetsDir)
	override("log-level", &c.Log.Level)
	override("log-format", &c.Log.Format)
}

func loadLibrary() (*scene.Library, error) {
	if cfg.PresetsDir != "" {
		lib, err := scene.LoadDir(cfg.PresetsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load presets from %s: %w", cfg.PresetsDir, err)
		}
		return lib, nil
	}
	return scene.Builtin()
}

// openEditor builds the configured editor with the command's logger.
func openEditor(opts ...agentscene.Option) (*agentscene.Editor, error) {
	lib, err := loadLibrary()
	if err != nil {
		return nil, err
	}
	base := []agentscene.Option{
		agentscene.WithLibrary(lib),
		agentscene.WithLogger(logger),
	}
	if cfg.Transitions.Reject() {
		base = append(base, agentscene.WithRejectConcurrent())
	}
	return agentscene.New(cfg.Editor, append(base, opts...)...)
}
