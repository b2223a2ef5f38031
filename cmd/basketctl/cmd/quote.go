package cmd

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/basket"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a mint or redeem against a basket described in a params file",
	Long: `Quote a trade offline. The basket assets, penalty curve, tau and drift
limit come from --params; holdings, supply and smoothing state from flags.

Examples:
  basketctl quote mint --params basket.yaml --inventory 50000000uatom,100000000uusdc \
    --supply 200000000 --prices uatom=2,uusdc=1 --deposit 10000000uatom
  basketctl quote redeem --params basket.yaml --inventory 50000000uatom,100000000uusdc \
    --supply 200000000 --prices uatom=2,uusdc=1 --amount 50000000`,
}

var quoteMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Quote depositing coins for basket tokens",
	RunE:  runQuoteMint,
}

var quoteRedeemCmd = &cobra.Command{
	Use:   "redeem",
	Short: "Quote burning basket tokens for coins",
	RunE:  runQuoteRedeem,
}

var (
	qParams    string
	qInventory string
	qSupply    string
	qPrices    string
	qEMA       string
	qLastBlock uint64
	qHeight    uint64
	qDeposit   string
	qAmount    string
	qRequested string
)

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quoteMintCmd)
	quoteCmd.AddCommand(quoteRedeemCmd)

	quoteCmd.PersistentFlags().StringVar(&qParams, "params", "", "params YAML with the basket assets (required)")
	quoteCmd.PersistentFlags().StringVar(&qInventory, "inventory", "", "basket holdings as coins, e.g. 50uatom,100uusdc")
	quoteCmd.PersistentFlags().StringVar(&qSupply, "supply", "0", "basket token supply in base units")
	quoteCmd.PersistentFlags().StringVar(&qPrices, "prices", "", "denom=price pairs per whole token (required)")
	quoteCmd.PersistentFlags().StringVar(&qEMA, "ema", "", "smoothed NAV, unset seeds it from the current NAV")
	quoteCmd.PersistentFlags().Uint64Var(&qLastBlock, "last-block", 0, "height the smoothed NAV was last updated at")
	quoteCmd.PersistentFlags().Uint64Var(&qHeight, "height", 1, "height to quote at")
	quoteCmd.MarkPersistentFlagRequired("params")
	quoteCmd.MarkPersistentFlagRequired("prices")

	quoteMintCmd.Flags().StringVar(&qDeposit, "deposit", "", "coins to deposit (required)")
	quoteMintCmd.MarkFlagRequired("deposit")

	quoteRedeemCmd.Flags().StringVar(&qAmount, "amount", "", "basket tokens to burn, in base units (required)")
	quoteRedeemCmd.Flags().StringVar(&qRequested, "requested", "", "coins to receive, pro rata when unset")
	quoteRedeemCmd.MarkFlagRequired("amount")
}

// quoteInputs is everything both quote directions are priced from.
type quoteInputs struct {
	quoter    basket.Quoter
	comp      basket.Composition
	supply    sdkmath.Int
	smoothing penalty.Smoothing
}

func loadQuoteInputs() (quoteInputs, error) {
	file, err := loadParamsFile(qParams)
	if err != nil {
		return quoteInputs{}, err
	}
	if len(file.Assets) == 0 {
		return quoteInputs{}, errors.New("params file lists no assets")
	}
	inventory, err := sdktypes.ParseCoinsNormalized(qInventory)
	if err != nil {
		return quoteInputs{}, fmt.Errorf("--inventory: %w", err)
	}
	supply, ok := sdkmath.NewIntFromString(qSupply)
	if !ok || supply.IsNegative() {
		return quoteInputs{}, fmt.Errorf("--supply %q is not a non-negative integer", qSupply)
	}
	prices, err := parsePrices(qPrices)
	if err != nil {
		return quoteInputs{}, fmt.Errorf("--prices: %w", err)
	}

	comp, err := basket.NewComposition(types.BasketState{
		Assets:         file.BasketAssets(),
		Inventory:      inventory,
		Supply:         supply,
		TokenPrecision: *file.TokenPrecision,
	}, prices)
	if err != nil {
		return quoteInputs{}, err
	}

	smoothing := penalty.Smoothing{LastBlock: qLastBlock}
	if qEMA != "" {
		if smoothing.EMA, err = fpdecimal.Parse(qEMA); err != nil {
			return quoteInputs{}, fmt.Errorf("--ema: %w", err)
		}
	}

	return quoteInputs{
		quoter: basket.Quoter{
			Params:   *file.Penalty,
			Tau:      file.TauBlocks,
			MaxDrift: *file.MaxDrift,
		},
		comp:      comp,
		supply:    supply,
		smoothing: smoothing,
	}, nil
}

func runQuoteMint(cmd *cobra.Command, args []string) error {
	in, err := loadQuoteInputs()
	if err != nil {
		return err
	}
	deposit, err := sdktypes.ParseCoinsNormalized(qDeposit)
	if err != nil {
		return fmt.Errorf("--deposit: %w", err)
	}
	quote, next, err := in.quoter.QuoteMint(in.comp, deposit, in.supply, in.smoothing, qHeight)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), quoteOutput{Quote: quote, Smoothing: next})
}

func runQuoteRedeem(cmd *cobra.Command, args []string) error {
	in, err := loadQuoteInputs()
	if err != nil {
		return err
	}
	amount, ok := sdkmath.NewIntFromString(qAmount)
	if !ok {
		return fmt.Errorf("--amount %q is not an integer", qAmount)
	}
	var requested sdktypes.Coins
	if qRequested != "" {
		if requested, err = sdktypes.ParseCoinsNormalized(qRequested); err != nil {
			return fmt.Errorf("--requested: %w", err)
		}
	}
	quote, next, err := in.quoter.QuoteRedeem(in.comp, amount, requested, in.supply, in.smoothing, qHeight)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), quoteOutput{Quote: quote, Smoothing: next})
}

type quoteOutput struct {
	types.Quote
	Smoothing penalty.Smoothing `json:"smoothing"`
}
