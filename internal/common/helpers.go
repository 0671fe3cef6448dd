package common

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	SUIDecimals = 9 // SUI has 9 decimals (MIST)
)

// MistToSUI converts MIST to SUI string without float precision loss
func MistToSUI(mist uint64) string {
	return formatWithDecimals(mist, SUIDecimals)
}

// SUIToMist converts SUI string to MIST without float precision loss
func SUIToMist(sui string) (uint64, error) {
	return parseWithDecimals(sui, SUIDecimals)
}

// FormatSUI returns a short display form with at most 4 fractional digits,
// truncated, e.g. "1.2345 SUI".
func FormatSUI(mist uint64) string {
	s := MistToSUI(mist)
	dot := strings.IndexByte(s, '.')
	return s[:dot+5] + " SUI"
}

// FiatValue multiplies a MIST amount by a decimal rate string and returns the
// result rounded to two decimals. Used for display only.
func FiatValue(mist uint64, rate string) (string, error) {
	r, ok := new(big.Rat).SetString(rate)
	if !ok {
		return "", fmt.Errorf("invalid rate %q", rate)
	}
	amount := new(big.Rat).SetFrac(
		new(big.Int).SetUint64(mist),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(SUIDecimals), nil),
	)
	return amount.Mul(amount, r).FloatString(2), nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && strings.Contains(frac, ".") {
		return 0, fmt.Errorf("invalid decimal format")
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid decimal format: %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("invalid decimal format: %q", s)
	}

	// Excess precision would silently lose value.
	if len(frac) > decimals {
		if strings.TrimRight(frac[decimals:], "0") != "" {
			return 0, fmt.Errorf("too many decimal places: %q", s)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, err
	}

	scale := uint64(math.Pow10(decimals))
	if w > (math.MaxUint64-f)/scale {
		return 0, fmt.Errorf("amount overflows: %q", s)
	}
	return w*scale + f, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
