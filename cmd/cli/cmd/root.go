// Package cmd provides the CLI commands for pricing-estimate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	modelPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricing-estimate",
	Short: "Estimate project prices from a data-driven pricing model",
	Long: `pricing-estimate prices a project selection against a pricing model
(project types, features, multiplier groups) and applies promotional codes.

The model is read from an .hcl or .json file, or from PostgreSQL when a
database DSN is configured.

Examples:
  pricing-estimate estimate --project landing --units 3 --feature cms
  pricing-estimate estimate --project webapp --client startup --discount SPRING
  pricing-estimate discount check SPRING --project landing
  pricing-estimate model validate ./pricing.hcl`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "", "pricing model file (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(discountCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if modelPath != "" {
		cfg.Pricing.ModelPath = modelPath
		cfg.Database.DSN = ""
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pricing-estimate version %s\n", Version)
	},
}
