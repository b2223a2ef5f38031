package cmd

import (
	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/engine"
)

var imbalanceCmd = &cobra.Command{
	Use:   "imbalance",
	Short: "Measure an inventory against its target weights",
	Long: `Print imbalance, drift and the per-asset allocation error.

Vectors are comma separated and share one asset order.

Example:
  basketctl imbalance --inventory 10,20 --prices 1,2 --weights 0.5,0.5`,
	RunE: runImbalance,
}

var (
	imbInventory string
	imbPrices    string
	imbWeights   string
	imbDelta     string
	imbParams    string
)

func init() {
	rootCmd.AddCommand(imbalanceCmd)

	imbalanceCmd.Flags().StringVarP(&imbInventory, "inventory", "i", "", "inventory in whole tokens (required)")
	imbalanceCmd.Flags().StringVarP(&imbPrices, "prices", "p", "", "price per whole token (required)")
	imbalanceCmd.Flags().StringVarP(&imbWeights, "weights", "w", "", "target units per basket unit (required)")
	imbalanceCmd.Flags().StringVarP(&imbDelta, "delta", "d", "", "evaluate adding this trade to the inventory")
	imbalanceCmd.Flags().StringVar(&imbParams, "params", "", "params YAML used to price --delta (defaults otherwise)")
	imbalanceCmd.MarkFlagRequired("inventory")
	imbalanceCmd.MarkFlagRequired("prices")
	imbalanceCmd.MarkFlagRequired("weights")
}

func runImbalance(cmd *cobra.Command, args []string) error {
	inv, err := parseVector(imbInventory)
	if err != nil {
		return err
	}
	prices, err := parseVector(imbPrices)
	if err != nil {
		return err
	}
	weights, err := parseVector(imbWeights)
	if err != nil {
		return err
	}

	if imbDelta == "" {
		analysis, err := engine.Analyze(inv, prices, weights)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), analysis)
	}

	delta, err := parseVector(imbDelta)
	if err != nil {
		return err
	}
	file, err := loadParamsFile(imbParams)
	if err != nil {
		return err
	}
	ev, err := engine.Evaluate(inv, delta, prices, weights, *file.Penalty)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), ev)
}
