package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elys-network/basket/internal/fpdecimal"
)

type unaryOp func(fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error)
type binaryOp func(a, b fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error)

var unaryOps = map[string]unaryOp{
	"exp":   fpdecimal.Exp,
	"ln":    fpdecimal.Ln,
	"log10": fpdecimal.Log10,
	"sqrt":  fpdecimal.Sqrt,
	"sin":   fpdecimal.Sin,
	"cos":   fpdecimal.Cos,
	"tan":   fpdecimal.Tan,
	"sinh":  fpdecimal.Sinh,
	"cosh":  fpdecimal.Cosh,
	"tanh":  fpdecimal.Tanh,
	"ceil":  fpdecimal.FPDecimal.Ceil,
	"floor": fpdecimal.FPDecimal.Floor,
	"trunc": func(x fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return x.Trunc(), nil },
	"abs":   func(x fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return x.Abs(), nil },
	"neg":   func(x fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return x.Neg(), nil },
}

var binaryOps = map[string]binaryOp{
	"add": fpdecimal.FPDecimal.Add,
	"sub": fpdecimal.FPDecimal.Sub,
	"mul": fpdecimal.FPDecimal.Mul,
	"quo": fpdecimal.FPDecimal.Quo,
	"pow": fpdecimal.Pow,
	"min": func(a, b fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return fpdecimal.Min(a, b), nil },
	"max": func(a, b fpdecimal.FPDecimal) (fpdecimal.FPDecimal, error) { return fpdecimal.Max(a, b), nil },
}

var calcCmd = &cobra.Command{
	Use:   "calc <op> <a> [b]",
	Short: "Evaluate a fixed-point operation",
	Long: `Evaluate one fixed-point decimal operation at 18 fractional digits.

Unary:  ` + opNames(unaryOps) + `
Binary: ` + opNames(binaryOps) + `

Example:
  basketctl calc tanh 1
  basketctl calc quo 1 3`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	op := strings.ToLower(args[0])
	a, err := fpdecimal.Parse(args[1])
	if err != nil {
		return err
	}

	var result fpdecimal.FPDecimal
	if fn, ok := unaryOps[op]; ok {
		if len(args) != 2 {
			return fmt.Errorf("%s takes one operand", op)
		}
		result, err = fn(a)
	} else if fn, ok := binaryOps[op]; ok {
		if len(args) != 3 {
			return fmt.Errorf("%s takes two operands", op)
		}
		b, perr := fpdecimal.Parse(args[2])
		if perr != nil {
			return perr
		}
		result, err = fn(a, b)
	} else {
		return fmt.Errorf("unknown operation %q", op)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.String())
	return nil
}

func opNames[T any](ops map[string]T) string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
