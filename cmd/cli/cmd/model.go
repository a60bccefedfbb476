// Package cmd - pricing model commands
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Omri-Jukin/Portfolio-sub003/adapters/postgres"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/bootstrap"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Pricing model management",
}

var modelValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a pricing model file",
	Long: `Decode a pricing file and run the same checks the service runs before
serving a model. Exits non-zero when the model would be refused.

Examples:
  pricing-estimate model validate ./pricing.hcl
  pricing-estimate model validate ./pricing.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModelValidate,
}

var modelMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the pricing tables in the configured database",
	Long: `Apply the pricing schema to the database named by DATABASE_URL or the
config file. Existing tables are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runModelMigrate,
}

func init() {
	modelCmd.AddCommand(modelValidateCmd)
	modelCmd.AddCommand(modelMigrateCmd)
}

func runModelValidate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	path := cfg.Pricing.ModelPath
	if len(args) > 0 {
		path = args[0]
	}

	bundle, err := bootstrap.LoadFile(cfg, path)
	if err != nil {
		return err
	}

	printModelSummary(cmd.OutOrStdout(), path, bundle.Model(), len(bundle.Discounts()))
	return nil
}

func printModelSummary(w io.Writer, path string, m *types.PricingModel, discounts int) {
	options := 0
	for _, g := range m.MultiplierGroups {
		options += len(g.Options)
	}

	fmt.Fprintf(w, "%s: valid (version %s)\n", path, m.Version)
	fmt.Fprintf(w, "  project types:      %d\n", len(m.ProjectTypes))
	fmt.Fprintf(w, "  overrides:          %d\n", len(m.BaseRateOverrides))
	fmt.Fprintf(w, "  features:           %d\n", len(m.Features))
	fmt.Fprintf(w, "  multiplier groups:  %d (%d options)\n", len(m.MultiplierGroups), options)
	fmt.Fprintf(w, "  discounts:          %d\n", discounts)
	fmt.Fprintf(w, "  currency:           %s\n", m.Meta.DefaultCurrency)

	for _, group := range []string{types.GroupComplexity, types.GroupTimeline, types.GroupTech, types.GroupClientType} {
		if !hasGroup(m, group) {
			fmt.Fprintf(w, "  warning: no %q group; every estimate will default it to 1\n", group)
		}
	}
}

func hasGroup(m *types.PricingModel, key string) bool {
	for _, g := range m.MultiplierGroups {
		if g.Key == key {
			return true
		}
	}
	return false
}

func runModelMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.Database.DSN == "" {
		return fmt.Errorf("no database configured (set DATABASE_URL)")
	}

	ctx := cmd.Context()
	store, err := postgres.Open(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Schema applied.")
	return nil
}
