package dto

import "github.com/shopspring/decimal"

// CreateAdjustmentRequest body para crear/actualizar un ajuste en DRAFT.
type CreateAdjustmentRequest struct {
	WarehouseID      string                  `json:"warehouse_id"`
	AdjustmentNumber string                  `json:"adjustment_number"`
	Type             string                  `json:"type"` // FOUND | DAMAGE | LOSS | AUDIT
	Reason           string                  `json:"reason"`
	Lines            []AdjustmentLineRequest `json:"lines"`
}

// AdjustmentLineRequest una línea de ajuste. Direction solo es obligatoria
// para el tipo AUDIT; en los demás la implica el tipo.
type AdjustmentLineRequest struct {
	ProductID     string          `json:"product_id"`
	Direction     string          `json:"direction,omitempty"` // IN | OUT
	Quantity      decimal.Decimal `json:"quantity"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}
