package cmd

import (
	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/fpdecimal"
)

var parseCmd = &cobra.Command{
	Use:   "parse <value>",
	Short: "Normalize a decimal and show its parts",
	Long: `Parse a decimal string and print its canonical form, sign and the raw
256-bit magnitude scaled by 10^18.

Example:
  basketctl parse -- -001.2500`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

type parsed struct {
	Value     string `json:"value"`
	Sign      int    `json:"sign"`
	Integer   bool   `json:"integer"`
	Magnitude string `json:"magnitude"`
	Trunc     string `json:"trunc"`
}

func runParse(cmd *cobra.Command, args []string) error {
	d, err := fpdecimal.Parse(args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), parsed{
		Value:     d.String(),
		Sign:      d.Sign(),
		Integer:   d.IsInteger(),
		Magnitude: d.Magnitude().String(),
		Trunc:     d.Trunc().String(),
	})
}
