package dto

import "github.com/shopspring/decimal"

// CreateOutboundRequest body para crear un documento de salida (remisión o
// despacho B2B). La bodega es siempre la planificada de la orden; si se envía,
// debe coincidir.
type CreateOutboundRequest struct {
	OrderID        string                `json:"order_id"`
	WarehouseID    string                `json:"warehouse_id,omitempty"`
	DocumentNumber string                `json:"document_number"`
	Lines          []OutboundLineRequest `json:"lines"`
}

// OutboundLineRequest una línea a despachar; las serializadas declaran
// exactamente Quantity números de serial.
type OutboundLineRequest struct {
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}
