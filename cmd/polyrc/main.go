package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tjirsch/polyrc/internal/config"
	"github.com/tjirsch/polyrc/internal/gitx"
	"github.com/tjirsch/polyrc/internal/logging"
	"github.com/tjirsch/polyrc/internal/store"
)

var version = "0.3.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "polyrc",
		Short: "Translate AI assistant rules between formats",
		Long: `polyrc converts AI-coding-assistant configuration between cursor,
windsurf, copilot, claude, gemini, and antigravity, through one canonical
intermediate representation.

It also keeps a git-backed store of your rules per project, so one
rule set follows you across tools and machines.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				if cfg, err := config.Load(); err == nil {
					level = cfg.Logging.Level
				}
			}
			slog.SetDefault(logging.NewLogger(level, os.Stderr))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("store", "", "Store path (default from config, ~/.polyrc/store)")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity: info, warn, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConvertCmd(),
		newListFormatsCmd(),
		newInitCmd(),
		newPushFormatCmd(),
		newPullFormatCmd(),
		newPushStoreCmd(),
		newPullStoreCmd(),
		newProjectCmd(),
		newDiscoverCmd(),
		newActiveCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "polyrc version %s\n", version)
			}
		},
	}
}

// storePath resolves the store root from the --store flag or the config.
func storePath(cmd *cobra.Command) (string, error) {
	if flag, _ := cmd.Flags().GetString("store"); flag != "" {
		return config.ExpandTilde(flag)
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.StorePath()
}

// openStore opens the configured store with the real git client.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, err := storePath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(path, gitx.NewExecClient())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
