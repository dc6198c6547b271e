package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// LineAmounts calcula los montos de una línea valorizada (servicio de dominio).
// Taxable = Rate * Qty; GST = Taxable * GSTPercent / 100; Total = Taxable + GST.
func LineAmounts(rate, quantity, gstPercent decimal.Decimal) (taxable, gst, total decimal.Decimal) {
	taxable = rate.Mul(quantity)
	gst = taxable.Mul(gstPercent).Div(hundred)
	total = taxable.Add(gst)
	return taxable, gst, total
}

// ValidateQuantity rechaza cantidades no positivas.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrValidation)
	}
	return nil
}

// ValidateSerialCount exige que una línea serializada declare exactamente
// tantos seriales como unidades mueve. La cantidad debe ser entera.
func ValidateSerialCount(quantity decimal.Decimal, serials int) error {
	if !quantity.Equal(quantity.Truncate(0)) {
		return fmt.Errorf("%w: una línea serializada requiere cantidad entera", domain.ErrValidation)
	}
	if int64(serials) != quantity.IntPart() {
		return fmt.Errorf("%w: la línea declara %d seriales para una cantidad de %s",
			domain.ErrValidation, serials, quantity.String())
	}
	return nil
}
