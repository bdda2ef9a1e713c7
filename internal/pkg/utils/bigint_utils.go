package utils

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// pow10 returns 10^decimals as a big.Float.
func pow10(decimals uint8) *big.Float {
	return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

// ToHuman divides amount by 10^decimals in big-float arithmetic and returns the float64
// closest to the result. The raw amount is never parsed as a float.
func ToHuman(amount *big.Int, decimals uint8) float64 {
	if amount == nil || amount.Sign() == 0 {
		return 0
	}
	value := new(big.Float).SetPrec(256).SetInt(amount)
	value.Quo(value, pow10(decimals))
	f, _ := value.Float64()
	return f
}

// Ratio returns num/den as float64, or false when den is zero or the result is not finite.
func Ratio(num, den *big.Int) (float64, bool) {
	if num == nil || den == nil || den.Sign() == 0 {
		return 0, false
	}
	q := new(big.Float).SetPrec(256).Quo(new(big.Float).SetInt(num), new(big.Float).SetInt(den))
	f, _ := q.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseDecimals converts decimals reported as a string, falling back to def when the
// value is missing or does not fit a uint8.
func ParseDecimals(raw *string, def uint8) uint8 {
	if raw == nil {
		return def
	}
	n, err := strconv.ParseUint(strings.TrimSpace(*raw), 10, 8)
	if err != nil {
		return def
	}
	return uint8(n)
}
