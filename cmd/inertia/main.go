// Command inertia inspects Vite builds, generates page constants and
// publishes built assets for apps using github.com/pthm/inertia.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/inertia/lib/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

const defaultConfigFile = "inertia.toml"

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "inertia",
		Short: "Tools for Inertia apps served by Go",
		Long: `inertia works with the same configuration file as the server
(inertia.toml, overridden by FV_INERTIA_*, FV_VITE_* and FV_PUBLISH_*
environment variables).`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", defaultConfigFile, "Config file (skipped when the default is missing)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		tagsCmd(g),
		versionCmd(g),
		checkCmd(g),
		generateCmd(),
		cleanCmd(),
		publishCmd(g),
	)

	return rootCmd
}

// load reads the configuration. A missing default config file is not an
// error; a missing explicit one is.
func (g *globals) load(cmd *cobra.Command) (config.Config, error) {
	path := g.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return config.Load(path)
}

func (g *globals) logger(cmd *cobra.Command) *slog.Logger {
	if !g.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}
