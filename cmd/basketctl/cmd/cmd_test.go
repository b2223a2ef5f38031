package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basketYAML = `
penalty:
  alpha_plus: "0.5"
  sigma_plus: "0.1"
  alpha_minus: "0.1"
  sigma_minus: "0.3"
notional:
  penalty_amt_lo: "0.01"
  penalty_cutoff_lo: "0.1"
  penalty_amt_hi: "0.05"
  penalty_cutoff_hi: "0.5"
  reward_amt: "0.005"
  reward_cutoff: "0.05"
max_drift: "0"
token_precision: 6
assets:
  - {symbol: atom, denom: uatom, precision: 6, target_weight: "1"}
  - {symbol: usdc, denom: uusdc, precision: 6, target_weight: "2"}
`

// run executes the root command with flag state reset, returning stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	imbInventory, imbPrices, imbWeights, imbDelta, imbParams = "", "", "", "", ""
	penParams, penAlphaPlus, penSigmaPlus, penAlphaMinus, penSigmaMinus, penScale = "", "", "", "", "", ""
	qParams, qInventory, qSupply, qPrices, qEMA = "", "", "0", "", ""
	qLastBlock, qHeight = 0, 1
	qDeposit, qAmount, qRequested = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeParams(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "basket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(basketYAML), 0o600))
	return path
}

func TestCalc(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "add", "1.5", "2.25"}, "3.75"},
		{[]string{"calc", "quo", "1", "3"}, "0.333333333333333333"},
		{[]string{"calc", "--", "quo", "-1", "3"}, "-0.333333333333333333"},
		{[]string{"calc", "tanh", "0"}, "0"},
		{[]string{"calc", "exp", "0"}, "1"},
		{[]string{"calc", "--", "trunc", "-2.7"}, "-2"},
		{[]string{"calc", "--", "max", "2", "-3"}, "2"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}

	_, err := run(t, "calc", "quo", "1", "0")
	assert.Error(t, err)
	_, err = run(t, "calc", "frobnicate", "1")
	assert.Error(t, err)
	_, err = run(t, "calc", "add", "1")
	assert.Error(t, err)
	_, err = run(t, "calc", "exp", "1e5")
	assert.Error(t, err)
}

func TestImbalanceCmd(t *testing.T) {
	out, err := run(t, "imbalance", "--inventory", "10,20", "--prices", "1,2", "--weights", "0.5,0.5")
	require.NoError(t, err)

	var analysis map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, "13.333333333333333333", analysis["imbalance"])

	out, err = run(t, "imbalance", "--inventory", "10,20", "--prices", "1,2", "--weights", "0.5,0.5",
		"--delta", "10,0", "--params", writeParams(t))
	require.NoError(t, err)
	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &ev))
	assert.Equal(t, "-1.333333333333333333", ev["score"])

	_, err = run(t, "imbalance", "--inventory", "10", "--prices", "1,2", "--weights", "0.5,0.5")
	assert.Error(t, err)
}

func TestPenaltyCmd(t *testing.T) {
	out, err := run(t, "penalty", "0.2", "0.3", "--params", writeParams(t))
	require.NoError(t, err)
	assert.Equal(t, "0.380797077977882444", strings.TrimSpace(out))

	out, err = run(t, "penalty", "0.3", "0.2", "--alpha-minus", "0")
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(out))

	_, err = run(t, "penalty", "0", "1", "--sigma-plus", "0")
	assert.Error(t, err)

	out, err = run(t, "penalty", "0", "30", "--params", writeParams(t), "--scale", "100")
	require.NoError(t, err)
	assert.Equal(t, "0.5", strings.TrimSpace(out))

	_, err = run(t, "penalty", "0", "30", "--scale", "100")
	assert.Error(t, err)
}

func TestQuoteCmd(t *testing.T) {
	params := writeParams(t)
	base := []string{
		"--params", params,
		"--inventory", "50000000uatom,100000000uusdc",
		"--supply", "200000000",
		"--prices", "uatom=2,uusdc=1",
		"--height", "100",
	}

	out, err := run(t, append([]string{"quote", "mint", "--deposit", "10000000uatom"}, base...)...)
	require.NoError(t, err)
	var mint map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &mint))
	assert.Equal(t, "12384058", mint["basket_tokens"])
	assert.Equal(t, "0.380797077977882444", mint["penalty"])

	out, err = run(t, append([]string{"quote", "redeem", "--amount", "50000000"}, base...)...)
	require.NoError(t, err)
	var redeem map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &redeem))
	assert.Equal(t, true, redeem["pro_rata"])

	_, err = run(t, append([]string{"quote", "redeem", "--amount", "500000000"}, base...)...)
	assert.Error(t, err)

	_, err = run(t, "quote", "mint", "--deposit", "1uatom", "--prices", "uatom=2")
	assert.Error(t, err)
}

func TestParsePrices(t *testing.T) {
	prices, err := parsePrices("uatom=2, uusdc=1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.5", prices["uusdc"].String())

	_, err = parsePrices("uatom")
	assert.Error(t, err)
	_, err = parsePrices("uatom=x")
	assert.Error(t, err)
}

func TestParseCmd(t *testing.T) {
	out, err := run(t, "parse", "--", "-001.2500")
	require.NoError(t, err)

	var got parsed
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "-1.25", got.Value)
	assert.Equal(t, -1, got.Sign)
	assert.False(t, got.Integer)
	assert.Equal(t, "1250000000000000000", got.Magnitude)
	assert.Equal(t, "-1", got.Trunc)

	_, err = run(t, "parse", ".5")
	assert.Error(t, err)
}
