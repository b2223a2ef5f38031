package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/types"
)

var ErrParamsFile = errors.New("invalid params file")

// ParamsFile is the YAML layout of a basket definition plus its penalty settings:
//
//	penalty:
//	  alpha_plus: "0.05"
//	  sigma_plus: "0.02"
//	  alpha_minus: "0.01"
//	  sigma_minus: "0.05"
//	tau_blocks: 600
//	max_drift: "0.5"
//	token_precision: 6
//	assets:
//	  - {symbol: atom, denom: uatom, precision: 6, target_weight: "1"}
//
// Omitted sections fall back to the package defaults.
type ParamsFile struct {
	Penalty        *penalty.Params         `yaml:"penalty"`
	Notional       *penalty.NotionalParams `yaml:"notional"`
	TauBlocks      uint64                  `yaml:"tau_blocks"`
	MaxDrift       *fpdecimal.FPDecimal    `yaml:"max_drift"`
	TokenPrecision *int                    `yaml:"token_precision"`
	Assets         []AssetEntry            `yaml:"assets"`
}

type AssetEntry struct {
	Symbol       string              `yaml:"symbol"`
	Denom        string              `yaml:"denom"`
	Precision    int                 `yaml:"precision"`
	TargetWeight fpdecimal.FPDecimal `yaml:"target_weight"`
}

// LoadParamsFile reads and validates a params file, filling omitted values with defaults.
func LoadParamsFile(path string) (ParamsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ParamsFile{}, fmt.Errorf("reading params file: %w", err)
	}
	return ParseParamsFile(raw)
}

// ParseParamsFile is LoadParamsFile without the file system.
func ParseParamsFile(raw []byte) (ParamsFile, error) {
	var f ParamsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return ParamsFile{}, fmt.Errorf("%w: %w", ErrParamsFile, err)
	}

	if f.Penalty == nil {
		p := DefaultPenaltyParams
		f.Penalty = &p
	}
	if err := f.Penalty.Validate(); err != nil {
		return ParamsFile{}, fmt.Errorf("%w: %w", ErrParamsFile, err)
	}
	if f.Notional != nil {
		if err := f.Notional.Validate(); err != nil {
			return ParamsFile{}, fmt.Errorf("%w: notional: %w", ErrParamsFile, err)
		}
	}
	if f.TauBlocks == 0 {
		f.TauBlocks = DefaultTauBlocks
	}
	if f.MaxDrift == nil {
		m := DefaultMaxDrift
		f.MaxDrift = &m
	}
	if f.MaxDrift.IsNeg() {
		return ParamsFile{}, fmt.Errorf("%w: max_drift is negative", ErrParamsFile)
	}
	if f.TokenPrecision == nil {
		p := DefaultTokenPrecision
		f.TokenPrecision = &p
	}
	for i, a := range f.Assets {
		if a.Denom == "" {
			return ParamsFile{}, fmt.Errorf("%w: asset %d has no denom", ErrParamsFile, i)
		}
	}
	return f, nil
}

// BasketAssets converts the asset entries to basket assets in file order.
func (f ParamsFile) BasketAssets() []types.Asset {
	assets := make([]types.Asset, len(f.Assets))
	for i, a := range f.Assets {
		assets[i] = types.Asset{
			Symbol:       a.Symbol,
			Denom:        a.Denom,
			Precision:    a.Precision,
			TargetWeight: a.TargetWeight,
		}
	}
	return assets
}
