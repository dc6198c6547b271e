package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento del libro.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Origen tipado de un movimiento (documento que lo produjo).
type TransactionType string

const (
	TxnPurchaseReceipt  TransactionType = "PURCHASE_RECEIPT"
	TxnDeliveryChallan  TransactionType = "DELIVERY_CHALLAN"
	TxnB2BShipment      TransactionType = "B2B_SHIPMENT"
	TxnStockAdjustment  TransactionType = "STOCK_ADJUSTMENT"
	TxnStockTransfer    TransactionType = "STOCK_TRANSFER"
	TxnOpeningBalance   TransactionType = "OPENING_BALANCE"
	TxnChallanReversal  TransactionType = "CHALLAN_REVERSAL"
	TxnShipmentReversal TransactionType = "SHIPMENT_REVERSAL"
)

// LedgerEntry es un registro inmutable del libro de movimientos, con snapshot
// de cantidades tomado del agregado Stock al momento de escribir.
// No existe operación de update ni delete: las correcciones son entradas
// nuevas con un TransactionType de reverso.
// Invariante: ClosingQuantity - OpeningQuantity = +Quantity (IN) o -Quantity (OUT).
type LedgerEntry struct {
	ID              string
	ProductID       string
	WarehouseID     string
	StockID         string
	TransactionType TransactionType
	TransactionID   string // id del documento origen
	MovementType    MovementType
	Quantity        decimal.Decimal
	SerialID        *string // referencia a la unidad serializada, si aplica
	OpeningQuantity decimal.Decimal
	ClosingQuantity decimal.Decimal
	Rate            *decimal.Decimal // movimientos valorizados
	GSTPercent      *decimal.Decimal
	Amount          *decimal.Decimal
	Reason          string
	PerformedBy     string
	CreatedAt       time.Time
}
