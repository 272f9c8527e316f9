package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slotwatch/slotwatch/internal/config"
	"github.com/slotwatch/slotwatch/internal/notify"
	"github.com/slotwatch/slotwatch/internal/provider"
)

// validateCmd validates a config file without starting the watcher.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a slotwatch configuration file without starting the watcher.

This command parses the YAML, expands environment variables, validates
all fields, and constructs every sink and provider once. It's useful for
CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  slotwatch validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Constructing sinks and providers catches what field validation alone
	// cannot, like an SMTP client that refuses its options.
	registry, err := notify.NewRegistry(cfg.Sinks)
	if err != nil {
		return fmt.Errorf("invalid sinks: %w", err)
	}
	if _, err := registry.Resolve(cfg.AdminNotify); err != nil {
		return fmt.Errorf("invalid admin_notify: %w", err)
	}
	for _, svc := range cfg.Services {
		if _, err := provider.New(svc); err != nil {
			return fmt.Errorf("service %q: %w", svc.Title, err)
		}
		if _, err := registry.Resolve(svc.Notify); err != nil {
			return fmt.Errorf("service %q: %w", svc.Title, err)
		}
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Sinks:    %d\n", len(cfg.Sinks))
	fmt.Printf("  Services: %d\n", len(cfg.Services))
	for _, svc := range cfg.Services {
		sinks := "none"
		if len(svc.Notify) > 0 {
			sinks = strings.Join(svc.Notify, ", ")
		}
		fmt.Printf("    - %s: every %ds -> %s\n", svc.Title, svc.Interval, sinks)
	}

	return nil
}
