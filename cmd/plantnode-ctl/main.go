// Plantnode-ctl is the control utility for WiFi plant monitoring nodes.
//
// It provides node discovery, an interactive control panel, direct commands
// for the LED strip, soil moisture readings, a live telemetry watcher and
// first-time WiFi provisioning. This tool talks to nodes over HTTP and
// WebSocket.
//
// Usage:
//
//	plantnode-ctl [command] [flags]
//
// Running without arguments launches the interactive control panel.
// See 'plantnode-ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenshed/plantnode/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "plantnode-ctl",
	Short: "Plant Node Control Utility",
	Long: `A standalone utility for controlling WiFi plant monitoring nodes.

Provides node discovery, an interactive control panel, direct LED strip
commands, soil moisture readings and first-time WiFi provisioning.

If no command is specified, the interactive control panel will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the panel when no subcommand provided
		return runPanel(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plantnode-ctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
