package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridpulse/dersim/app"
	"github.com/gridpulse/dersim/config"
)

var (
	cfgPath     string
	violation   bool
	multiplier  float64
	maxMessages int
)

var rootCmd = &cobra.Command{
	Use:   "dersim",
	Short: "Synthetic DER telemetry generator",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.Flags().BoolVar(&violation, "violation", false, "enable contract violation mode")
	rootCmd.Flags().Float64Var(&multiplier, "multiplier", 0, "violation intensity multiplier")
	rootCmd.Flags().IntVar(&maxMessages, "max-messages", -1, "maximum number of messages to send (0 for unlimited)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Violation.Validate(); err != nil {
		return err
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

// applyFlags lets command-line flags override the configuration file, the
// way the simulator is typically driven in violation test runs.
func applyFlags(cmd *cobra.Command, cfg *config.Root) {
	if cmd.Flags().Changed("violation") {
		cfg.Violation.Enabled = violation
	}
	if cmd.Flags().Changed("multiplier") {
		cfg.Violation.Multiplier = multiplier
	}
	if cmd.Flags().Changed("max-messages") {
		cfg.Simulation.MaxMessages = maxMessages
	}
}
