package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de una recepción de compra. RECEIVED es terminal: no hay reverso.
type ReceiptStatus string

const (
	ReceiptStatusDraft    ReceiptStatus = "DRAFT"
	ReceiptStatusReceived ReceiptStatus = "RECEIVED"
)

// PurchaseReceipt es la recepción de mercancía contra una orden de compra.
// Las líneas y seriales pertenecen al encabezado: en DRAFT se destruyen y
// recrean con él; al avanzar de estado quedan inmutables.
type PurchaseReceipt struct {
	ID              string
	CompanyID       string
	PurchaseOrderID string
	WarehouseID     string
	ReceiptNumber   string
	Status          ReceiptStatus
	ReceivedAt      *time.Time
	Lines           []PurchaseReceiptLine
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PurchaseReceiptLine es una línea de recepción con sus montos calculados y,
// para productos serializados, los números de serial declarados.
type PurchaseReceiptLine struct {
	ID                  string
	ReceiptID           string
	PurchaseOrderLineID string
	ProductID           string
	TrackingType        TrackingType
	AcceptedQuantity    decimal.Decimal
	Rate                decimal.Decimal
	GSTPercent          decimal.Decimal
	TaxableAmount       decimal.Decimal
	GSTAmount           decimal.Decimal
	TotalAmount         decimal.Decimal
	SerialNumbers       []string
}
