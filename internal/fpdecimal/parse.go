package fpdecimal

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Parse reads a decimal of the form -?[0-9]+(\.[0-9]{1,18})?.
// Input with more than 18 fractional digits is rejected, never rounded.
func Parse(s string) (FPDecimal, error) {
	d, err := parse(s)
	if err != nil {
		return Zero, fmt.Errorf("parsing %q: %w", s, err)
	}
	return d, nil
}

// MustParse is like Parse but panics on failure.
func MustParse(s string) FPDecimal {
	d, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse(%q) failed: %v", s, err))
	}
	return d
}

// Must panics if err is non-nil and returns d otherwise.
func Must(d FPDecimal, err error) FPDecimal {
	if err != nil {
		panic(fmt.Sprintf("Must(%v) failed: %v", d, err))
	}
	return d
}

func parse(s string) (FPDecimal, error) {
	pos := 0
	neg := false
	if pos < len(s) && s[pos] == '-' {
		neg = true
		pos++
	}

	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	if pos == start {
		return Zero, fmt.Errorf("%w: missing integer digits", ErrMalformedInput)
	}
	whole := s[start:pos]

	frac := ""
	if pos < len(s) {
		if s[pos] != '.' {
			return Zero, fmt.Errorf("%w: unexpected character %q", ErrMalformedInput, s[pos])
		}
		pos++
		fstart := pos
		for pos < len(s) && isDigit(s[pos]) {
			pos++
		}
		if pos < len(s) {
			return Zero, fmt.Errorf("%w: unexpected character %q", ErrMalformedInput, s[pos])
		}
		frac = s[fstart:pos]
		switch {
		case len(frac) == 0:
			return Zero, fmt.Errorf("%w: missing fractional digits", ErrMalformedInput)
		case len(frac) > Precision:
			return Zero, fmt.Errorf("%w: %d fractional digits, at most %d allowed", ErrMalformedInput, len(frac), Precision)
		}
	}

	digits := whole + frac + strings.Repeat("0", Precision-len(frac))
	mag, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Zero, ErrMalformedInput
	}
	return fromWide(mag, neg)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// String returns the shortest form that parses back to d.
func (d FPDecimal) String() string {
	var b strings.Builder
	q, r := new(big.Int).QuoRem(d.wide(), scale, new(big.Int))
	if d.IsNeg() {
		b.WriteByte('-')
	}
	b.WriteString(q.String())
	if r.Sign() != 0 {
		frac := r.String()
		frac = strings.Repeat("0", Precision-len(frac)) + frac
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(frac, "0"))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d FPDecimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *FPDecimal) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalJSON encodes the decimal as a JSON string.
func (d FPDecimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (d *FPDecimal) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return d.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer. Decimals are stored as NUMERIC text.
func (d FPDecimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *FPDecimal) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return d.UnmarshalText(v)
	case string:
		return d.UnmarshalText([]byte(v))
	case int64:
		*d = New(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into FPDecimal", ErrInvalidOperation, value)
	}
}
