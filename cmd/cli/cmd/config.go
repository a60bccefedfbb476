// Package cmd - configuration commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Long: `Write the default configuration as JSON, ready to edit. Secrets such as
DATABASE_URL and REDIS_PASSWORD are left out; keep them in the environment
or a .env file.

Examples:
  pricing-estimate config init
  pricing-estimate config init ./deploy/pricing.json --model ./pricing.hcl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "pricing-estimate.json"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if modelPath != "" {
		cfg.Pricing.ModelPath = modelPath
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
