package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

var taxRate = decimal.NewFromFloat(0.05)

// Totals is the money breakdown quoted for a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices the cart lines: subtotal from live product prices,
// a flat 5% tax rounded to two decimals, and their sum.
func ComputeTotals(items []models.CartItem) (Totals, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			return Totals{}, pkgerrors.Newf(pkgerrors.CodeInternal, "cart item %s missing product", item.ID)
		}
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(tax).Round(2)
	return Totals{Subtotal: subtotal, Tax: tax, Total: total}, nil
}

// ValidateQuotedTotal compares the client-displayed total with the computed one.
func ValidateQuotedTotal(quoted, computed decimal.Decimal) error {
	if !quoted.Equal(computed) {
		return pkgerrors.Newf(
			pkgerrors.CodeValidation,
			"total mismatch: expected %s, got %s", computed.StringFixed(2), quoted.StringFixed(2),
		)
	}
	return nil
}

// MinorUnits converts a rupee amount into paise for the gateway.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
