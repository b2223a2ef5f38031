package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/fpdecimal"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "basketctl version %s (%d fractional digits)\n", version, fpdecimal.Precision)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
