// Package main is the entry point for the slotwatch CLI.
//
// Slotwatch polls booking backends for free appointment slots and pushes
// change notifications to the configured sinks.
//
// Usage:
//
//	slotwatch watch -c config.yaml     # Start the watcher
//	slotwatch validate -c config.yaml  # Validate configuration
//	slotwatch version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "slotwatch",
	Short: "Watch booking backends for freed appointment slots",
	Long: `Slotwatch watches appointment booking backends and notifies you when
the set of free slots changes.

Each configured service is polled on its own interval. When a slot frees
up or is taken, a report is pushed to the service's sinks (gotify,
email). Newly freed slots are delivered with urgent priority so they are
hard to miss.

Quick start:
  1. Create a config file (slotwatch.yaml)
  2. Run: slotwatch watch -c slotwatch.yaml

Example config:
  services:
    - title: Dentist downtown
      provider: booked4us
      interval: 300
      notify: [my-phone]
      settings:
        url: https://booking.example.org
  sinks:
    my-phone:
      provider: gotify
      settings:
        url: https://gotify.example.org
        application_token: ${GOTIFY_TOKEN}`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this slotwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("slotwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
