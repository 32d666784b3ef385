// internal/report/femto.go
package report

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// femtoExp is the decimal exponent of one internal unit.
const femtoExp = -15

// SignedFemto renders a femto-unit total as a fixed-point decimal with
// 15 fractional digits and an explicit sign: 24 -> "+0.000000000000024".
func SignedFemto(v *big.Int) string {
	d := femtoDecimal(v)
	s := d.StringFixed(-femtoExp)
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}

// Femto renders like SignedFemto without the leading '+'.
func Femto(v *big.Int) string {
	return femtoDecimal(v).StringFixed(-femtoExp)
}

func femtoDecimal(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, femtoExp)
}
