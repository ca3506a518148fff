package utils

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Amounts are written in whole coins with up to 8 decimal places.
const amountDecimals = 8

func BytesToHex(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexToBytes(str string) ([]byte, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex %q", str)
	}
	return bytes, nil
}

// ParseAmount converts a decimal coin string such as "9.5" into an exact Amount. More than 8
// decimal places or a value outside the Amount range is an error, never a rounding.
func ParseAmount(s string) (btcutil.Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid amount %q", s)
	}
	sat := d.Shift(amountDecimals)
	if !sat.IsInteger() {
		return 0, errors.Errorf("amount %q has more than %d decimal places", s, amountDecimals)
	}
	b := sat.BigInt()
	if !b.IsInt64() {
		return 0, errors.Errorf("amount %q is out of range", s)
	}
	return btcutil.Amount(b.Int64()), nil
}

// FormatAmount is the inverse of ParseAmount.
func FormatAmount(a btcutil.Amount) string {
	return decimal.New(int64(a), -amountDecimals).String()
}
