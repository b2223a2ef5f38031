package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/config"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/penalty"
)

var penaltyCmd = &cobra.Command{
	Use:   "penalty <before> <after>",
	Short: "Price an imbalance change on the penalty curve",
	Long: `Print the signed adjustment for moving imbalance from before to after.
Positive values are charges, negative values rebates.

Curve parameters come from --params, then the individual flags override.
With --scale the piecewise notional curve from the params file's notional
section is used instead, its cutoffs scaled by the given value.

Example:
  basketctl penalty 0.2 0.3 --alpha-plus 0.5 --sigma-plus 0.1
  basketctl penalty 0 30 --params basket.yaml --scale 100`,
	Args: cobra.ExactArgs(2),
	RunE: runPenalty,
}

var (
	penParams     string
	penAlphaPlus  string
	penSigmaPlus  string
	penAlphaMinus string
	penSigmaMinus string
	penScale      string
)

func init() {
	rootCmd.AddCommand(penaltyCmd)

	penaltyCmd.Flags().StringVar(&penParams, "params", "", "params YAML file")
	penaltyCmd.Flags().StringVar(&penAlphaPlus, "alpha-plus", "", "charge ceiling for worsening trades")
	penaltyCmd.Flags().StringVar(&penSigmaPlus, "sigma-plus", "", "charge curve width")
	penaltyCmd.Flags().StringVar(&penAlphaMinus, "alpha-minus", "", "rebate ceiling for improving trades")
	penaltyCmd.Flags().StringVar(&penSigmaMinus, "sigma-minus", "", "rebate curve width")
	penaltyCmd.Flags().StringVar(&penScale, "scale", "", "price on the notional curve with cutoffs scaled by this value")
}

func runPenalty(cmd *cobra.Command, args []string) error {
	before, err := fpdecimal.Parse(args[0])
	if err != nil {
		return fmt.Errorf("before: %w", err)
	}
	after, err := fpdecimal.Parse(args[1])
	if err != nil {
		return fmt.Errorf("after: %w", err)
	}

	file, err := loadParamsFile(penParams)
	if err != nil {
		return err
	}
	if penScale != "" {
		return runNotional(cmd, before, after, file)
	}
	params := *file.Penalty
	overrides := []struct {
		flag  string
		value string
		dst   *fpdecimal.FPDecimal
	}{
		{"alpha-plus", penAlphaPlus, &params.AlphaPlus},
		{"sigma-plus", penSigmaPlus, &params.SigmaPlus},
		{"alpha-minus", penAlphaMinus, &params.AlphaMinus},
		{"sigma-minus", penSigmaMinus, &params.SigmaMinus},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if *o.dst, err = fpdecimal.Parse(o.value); err != nil {
			return fmt.Errorf("--%s: %w", o.flag, err)
		}
	}

	pen, err := penalty.Penalty(before, after, params)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pen.String())
	return nil
}

func runNotional(cmd *cobra.Command, before, after fpdecimal.FPDecimal, file config.ParamsFile) error {
	if file.Notional == nil {
		return fmt.Errorf("--scale needs a notional section in --params")
	}
	scale, err := fpdecimal.Parse(penScale)
	if err != nil {
		return fmt.Errorf("--scale: %w", err)
	}
	pen, err := penalty.Notional(before, after, scale, *file.Notional)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pen.String())
	return nil
}
