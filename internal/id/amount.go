package id

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseAmount reads either a base-unit integer or a decimal amount scaled by
// decimals. Exactly one of the two must be set.
func ParseAmount(baseUnits, decimal string, decimals uint8) (*big.Int, error) {
	baseUnits, decimal = strings.TrimSpace(baseUnits), strings.TrimSpace(decimal)
	if baseUnits != "" && decimal != "" {
		return nil, clierr.New(clierr.CodeUsage, "use either --amount or --amount-decimal, not both")
	}
	if baseUnits == "" && decimal == "" {
		return nil, clierr.New(clierr.CodeUsage, "amount is required")
	}
	if baseUnits != "" {
		n, ok := new(big.Int).SetString(baseUnits, 10)
		if !ok {
			return nil, clierr.New(clierr.CodeUsage, "--amount must be an integer string")
		}
		if n.Sign() < 0 {
			return nil, clierr.New(clierr.CodeUsage, "--amount must be non-negative")
		}
		return n, nil
	}
	if !decimalPattern.MatchString(decimal) {
		return nil, clierr.New(clierr.CodeUsage, "--amount-decimal must be in decimal form like 1.23")
	}
	return decimalToBaseUnits(decimal, int(decimals))
}

func decimalToBaseUnits(decimal string, decimals int) (*big.Int, error) {
	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("decimal precision exceeds token decimals (%d)", decimals))
	}
	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, clierr.New(clierr.CodeUsage, "invalid decimal amount")
	}
	return n, nil
}

// FormatUnits renders a base-unit amount as a decimal string without
// trailing zeros.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	neg := amount.Sign() < 0
	s := new(big.Int).Abs(amount).String()
	d := int(decimals)
	if d > 0 {
		if len(s) <= d {
			s = strings.Repeat("0", d-len(s)+1) + s
		}
		intPart, fracPart := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
		s = intPart
		if fracPart != "" {
			s += "." + fracPart
		}
	}
	if neg {
		return "-" + s
	}
	return s
}
