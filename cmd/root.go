// Package cmd implements the sweeper CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/sweeper/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweeper",
		Short: "Sweeps your flagged posts off a timeline, one confirmed deletion at a time",
		Long: "sweeper drives a Chrome page in the background, scanning the timeline\n" +
			"for posts an external classifier has flagged. When a flagged post is\n" +
			"authored by the signed-in account, it walks the site's own deletion\n" +
			"menu (caret → delete → confirm) exactly like a user would.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(doctorCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd().Execute()
}

// resolveConfigPath honors --config, then SWEEPER_CONFIG, then the default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}
