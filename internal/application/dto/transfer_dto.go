package dto

import "github.com/shopspring/decimal"

// CreateTransferRequest body para crear/actualizar un traslado en DRAFT.
type CreateTransferRequest struct {
	TransferNumber         string                `json:"transfer_number"`
	SourceWarehouseID      string                `json:"source_warehouse_id"`
	DestinationWarehouseID string                `json:"destination_warehouse_id"`
	Lines                  []TransferLineRequest `json:"lines"`
}

// TransferLineRequest una línea de traslado; las serializadas referencian
// exactamente Quantity seriales por identificador interno.
type TransferLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	SerialIDs []string        `json:"serial_ids,omitempty"`
}
