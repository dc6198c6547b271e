package dto

import "github.com/shopspring/decimal"

// CreateReceiptRequest body para POST /api/receipts (crea en DRAFT).
type CreateReceiptRequest struct {
	PurchaseOrderID string               `json:"purchase_order_id"`
	WarehouseID     string               `json:"warehouse_id"`
	ReceiptNumber   string               `json:"receipt_number"`
	Lines           []ReceiptLineRequest `json:"lines"`
}

// ReceiptLineRequest una línea de recepción contra una línea de la orden de compra.
type ReceiptLineRequest struct {
	PurchaseOrderLineID string          `json:"purchase_order_line_id"`
	AcceptedQuantity    decimal.Decimal `json:"accepted_quantity"`
	SerialNumbers       []string        `json:"serial_numbers,omitempty"`
}
