package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockReservation es una retención de cantidad sobre un agregado Stock a
// favor de una orden confirmada. Se crea al confirmar, se consume al despachar
// y se libera al cancelar; Quantity es lo que queda retenido.
type StockReservation struct {
	ID          string
	OrderID     string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
