package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/config"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/logger"
	"github.com/elys-network/basket/internal/vector"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "basketctl",
	Short: "Offline calculator for basket imbalance, penalties and quotes",
	Long: `basketctl runs the basket pricing math without a server or database.

It provides tools for:
  - 18-digit fixed-point arithmetic and transcendental functions
  - Imbalance, drift and allocation error of an inventory
  - The asymmetric penalty curve for an imbalance change
  - Mint and redeem quotes against a basket described in a params file`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitializeWithWriter(logLevel, "console", cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// parseVector reads a comma separated list of decimals.
func parseVector(s string) (vector.Vector, error) {
	if strings.TrimSpace(s) == "" {
		return vector.Vector{}, nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return vector.Parse(parts)
}

// parsePrices reads "denom=price" pairs separated by commas.
func parsePrices(s string) (map[string]fpdecimal.FPDecimal, error) {
	prices := make(map[string]fpdecimal.FPDecimal)
	if strings.TrimSpace(s) == "" {
		return prices, nil
	}
	for _, pair := range strings.Split(s, ",") {
		denom, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || denom == "" {
			return nil, fmt.Errorf("price %q is not denom=value", pair)
		}
		p, err := fpdecimal.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("price of %s: %w", denom, err)
		}
		prices[denom] = p
	}
	return prices, nil
}

// loadParamsFile returns the defaults when path is empty.
func loadParamsFile(path string) (config.ParamsFile, error) {
	if path == "" {
		return config.ParseParamsFile(nil)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return config.ParamsFile{}, fmt.Errorf("reading params file: %w", err)
	}
	return config.ParseParamsFile(raw)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
