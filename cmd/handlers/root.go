package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trailhead",
		Short: "Trailhead generates and evaluates leadership reflections.",
		Long: `Trailhead turns a leader's intake answers into a budgeted narrative
summary, a trail map of what their team is likely to notice, and a
continuous improvement campaign their team rates on effort and efficacy.

It also runs an offline evaluation harness that scores generated trail
maps against a fixed quality rubric.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trailhead.yaml)")

	rootCmd.AddCommand(NewEvaluateCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewSummarizeCmd())

	return rootCmd
}

// Execute runs the root command. Any error is printed and the process exits 1.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if cfg.App.Debug {
		level = "debug"
	}
	logger.Configure(level, cfg.Logging.Format)
}
