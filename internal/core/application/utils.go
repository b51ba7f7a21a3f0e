package application

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const nanoPerTon = 1_000_000_000

var (
	errNegativeAmount  = fmt.Errorf("amount must not be negative")
	errTooManyDecimals = fmt.Errorf("amount has more than 9 decimals")
)

func formatTon(nano uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(nano), -9).String()
}

// formatJetton renders an amount of the jetton's smallest unit in whole
// jettons without going through a fixed width integer.
func formatJetton(units *big.Int) string {
	return decimal.NewFromBigInt(units, -9).String()
}

// parseJettonAmount converts a whole-unit amount into the jetton's smallest
// unit (9 decimals). Empty means one jetton.
func parseJettonAmount(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) <= 0 {
		return big.NewInt(nanoPerTon), nil
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	if value.IsNegative() {
		return nil, errNegativeAmount
	}
	units := value.Shift(9)
	if !units.IsInteger() {
		return nil, errTooManyDecimals
	}
	return units.BigInt(), nil
}

func fileNameFor(name string, ms int64) string {
	return fmt.Sprintf("%s_%d.jpg", strings.ReplaceAll(strings.ToLower(name), " ", "_"), ms)
}
