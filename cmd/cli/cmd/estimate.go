// Package cmd - estimate command
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/bootstrap"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

var (
	outputFormat string
	showDetails  bool

	selection     types.CalculatorInputs
	discountCode  string
	userRedeemed  int
	currencyInput string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the price of a project selection",
	Long: `Price a project selection against the configured pricing model.

Unknown keys never fail the estimate: they fall back to neutral defaults and
are listed under the breakdown.

Examples:
  pricing-estimate estimate --project landing
  pricing-estimate estimate --project webapp --units 12 --feature cms --feature i18n
  pricing-estimate estimate --project webapp --complexity complex --timeline rush
  pricing-estimate estimate --project landing --discount SPRING --format json`,
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json); defaults to the configured format")
	estimateCmd.Flags().BoolVarP(&showDetails, "details", "d", true, "show detailed cost breakdown")

	addSelectionFlags(estimateCmd)
	estimateCmd.Flags().IntVarP(&selection.NumUnits, "units", "u", 0, "number of pages/units")
	estimateCmd.Flags().StringVar(&selection.ComplexityKey, "complexity", "", "complexity option")
	estimateCmd.Flags().StringVar(&selection.TimelineKey, "timeline", "", "timeline option")
	estimateCmd.Flags().StringVar(&selection.TechKey, "tech", "", "tech stack option")
	estimateCmd.Flags().StringVar(&currencyInput, "currency", "", "currency override")
	estimateCmd.Flags().StringVar(&discountCode, "discount", "", "discount code to apply")
	estimateCmd.Flags().IntVar(&userRedeemed, "user-redemptions", -1, "times the user already redeemed the code (-1 if unknown)")
}

// addSelectionFlags registers the flags shared by estimate and discount check
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&selection.ProjectTypeKey, "project", "p", "", "project type key")
	cmd.Flags().StringSliceVar(&selection.SelectedFeatureKeys, "feature", nil, "selected feature key (repeatable)")
	cmd.Flags().StringVar(&selection.ClientTypeKey, "client", "", "client type key")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Get()

	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	req := pricing.QuoteRequest{
		Inputs:       selection,
		DiscountCode: discountCode,
	}
	req.Inputs.Currency = types.Currency(currencyInput)
	if userRedeemed >= 0 {
		req.UserRedemptions = &userRedeemed
	}

	logging.Debug("Starting estimate")
	quote, err := rt.Service.Quote(ctx, req)
	if err != nil {
		return err
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	return renderQuote(cmd.OutOrStdout(), quote, format, showDetails)
}

func renderQuote(w io.Writer, q *pricing.Quote, format string, details bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	case "cli", "":
		printResults(w, q, details)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want cli or json)", format)
	}
}

const (
	boxTop = "┌─────────────────────────────────────────────────────────────────────────┐"
	boxMid = "├─────────────────────────────────────────────────────────────────────────┤"
	boxEnd = "└─────────────────────────────────────────────────────────────────────────┘"
)

func printResults(w io.Writer, q *pricing.Quote, details bool) {
	b := q.Breakdown
	cur := string(b.Currency)
	row := func(label, value string) {
		fmt.Fprintf(w, "│ %-50s %20s │\n", truncate(label, 50), value)
	}
	money := func(v interface{ StringFixed(int32) string }) string {
		return v.StringFixed(2) + " " + cur
	}

	fmt.Fprintln(w, boxTop)
	fmt.Fprintln(w, "│                         PROJECT PRICE ESTIMATE                          │")
	fmt.Fprintln(w, boxMid)

	row("Base", money(b.BaseCost))
	row("Pages", money(b.PageCost))
	row("Features", money(b.TotalFeatureCost))
	if details {
		keys := make([]string, 0, len(b.FeatureCosts))
		for k := range b.FeatureCosts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "│   └─ %-46s %20s │\n", truncate(k, 46), money(b.FeatureCosts[k]))
		}
		row("Complexity multiplier", b.ComplexityMultiplier.String())
		row("Timeline multiplier", b.TimelineMultiplier.String())
		row("Tech stack multiplier", b.TechStackMultiplier.String())
		row("Client type multiplier", b.ClientTypeMultiplier.String())
		row("Subtotal", money(b.Subtotal))
	}

	fmt.Fprintln(w, boxMid)
	row("TOTAL", money(b.Total))
	if b.DiscountApplied != nil {
		row(fmt.Sprintf("Discount (%s %s)", b.DiscountApplied.Type, b.DiscountApplied.Amount), "-"+money(b.DiscountApplied.DiscountAmount))
		row("TOTAL AFTER DISCOUNT", money(b.DiscountApplied.DiscountedTotal))
	}
	row("RANGE", fmt.Sprintf("%d - %d", b.Range.Min, b.Range.Max))
	fmt.Fprintln(w, boxEnd)

	if q.Discount != nil && !q.Discount.Valid {
		fmt.Fprintf(w, "\nDiscount %s not applied: %s", q.Discount.Code, q.Discount.Reason)
		if q.Discount.FailedRule != "" {
			fmt.Fprintf(w, " (%s)", q.Discount.FailedRule)
		}
		fmt.Fprintln(w)
	}
	if q.BelowMinimum {
		fmt.Fprintf(w, "\nWarning: total is below the project minimum of %s\n", money(*q.Minimum))
	}
	if details && len(b.Fallbacks) > 0 {
		fmt.Fprintf(w, "\nDefaults used:\n")
		for _, fb := range b.Fallbacks {
			key := fb.Key
			if fb.Group != "" {
				key = fb.Group + "." + fb.Key
			}
			fmt.Fprintf(w, "  %s %q -> %s\n", fb.Kind, key, fb.Default)
		}
	}
	fmt.Fprintf(w, "\nModel version: %s\n", q.ModelVersion)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
