// Package cmd - discount commands
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/bootstrap"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
)

var discountCmd = &cobra.Command{
	Use:   "discount",
	Short: "Check and redeem discount codes",
}

var discountCheckCmd = &cobra.Command{
	Use:   "check <code>",
	Short: "Check whether a code applies to a selection",
	Long: `Run the validity gates for a discount code: active flag, start and end
dates, usage cap, and scope against the given selection.

Examples:
  pricing-estimate discount check SPRING
  pricing-estimate discount check spring --project landing --client startup`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscountCheck,
}

var discountRedeemCmd = &cobra.Command{
	Use:   "redeem <code>",
	Short: "Record one use of a code after re-checking it",
	Long: `Re-check a discount code for the selection and record one redemption.

Redemptions are persisted only when the model is served from PostgreSQL.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscountRedeem,
}

func init() {
	discountCmd.AddCommand(discountCheckCmd)
	discountCmd.AddCommand(discountRedeemCmd)

	addSelectionFlags(discountCheckCmd)
	addSelectionFlags(discountRedeemCmd)
}

func runDiscountCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap.New(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	verdict, err := rt.Service.CheckDiscount(ctx, args[0], selection.Selection())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verdict.Valid {
		fmt.Fprintf(out, "%s: valid\n", verdict.Code)
		return nil
	}
	fmt.Fprintf(out, "%s: not valid (%s)", verdict.Code, verdict.Reason)
	if verdict.FailedRule != "" {
		fmt.Fprintf(out, " failed rule: %s", verdict.FailedRule)
	}
	fmt.Fprintln(out)
	return nil
}

func runDiscountRedeem(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap.New(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	verdict, err := rt.Service.Redeem(ctx, pricing.QuoteRequest{Inputs: selection, DiscountCode: args[0]})
	if err != nil {
		return err
	}
	if !verdict.Valid {
		return fmt.Errorf("%s cannot be redeemed: %s", verdict.Code, verdict.Reason)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: redeemed (source %s)\n", verdict.Code, rt.Source)
	return nil
}
