package model

import (
	"math"

	"github.com/btcsuite/btcd/btcutil"
)

// AddAmounts returns a+b, or false if the sum does not fit an Amount.
func AddAmounts(a, b btcutil.Amount) (btcutil.Amount, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// SubAmounts returns a-b, or false if the difference does not fit an Amount.
func SubAmounts(a, b btcutil.Amount) (btcutil.Amount, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

// SumOutputs totals output values, or returns false on overflow.
func SumOutputs(outputs []OutputTx) (btcutil.Amount, bool) {
	var total btcutil.Amount
	for _, out := range outputs {
		sum, ok := AddAmounts(total, out.value)
		if !ok {
			return 0, false
		}
		total = sum
	}
	return total, true
}
