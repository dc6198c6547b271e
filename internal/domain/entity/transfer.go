package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de un traslado. Aprobar mueve el físico y deja el traslado en
// tránsito en un solo paso; RECEIVED es solo un acuse de recibo sin efecto
// adicional sobre stock.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "DRAFT"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusReceived  TransferStatus = "RECEIVED"
)

// StockTransfer mueve cantidad entre dos bodegas distintas.
type StockTransfer struct {
	ID                     string
	CompanyID              string
	TransferNumber         string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 TransferStatus
	Lines                  []TransferLine
	ApprovedBy             string
	ApprovedAt             *time.Time
	ReceivedBy             string
	ReceivedAt             *time.Time
	CreatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TransferLine es una línea de traslado; las serializadas referencian
// exactamente Quantity seriales por identificador interno (no por cadena).
type TransferLine struct {
	ID           string
	TransferID   string
	ProductID    string
	TrackingType TrackingType
	Quantity     decimal.Decimal
	SerialIDs    []string
}
