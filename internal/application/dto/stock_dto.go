package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalanceRequest body para POST /api/stock/opening-balance.
type OpeningBalanceRequest struct {
	ProductID     string           `json:"product_id"`
	WarehouseID   string           `json:"warehouse_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Rate          *decimal.Decimal `json:"rate,omitempty"`
	SerialNumbers []string         `json:"serial_numbers,omitempty"`
}

// StockDTO respuesta con el agregado por (producto, bodega).
type StockDTO struct {
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	TrackingType      string          `json:"tracking_type"`
	MinStockQuantity  decimal.Decimal `json:"min_stock_quantity"`
	LastInwardAt      *time.Time      `json:"last_inward_at,omitempty"`
	LastOutwardAt     *time.Time      `json:"last_outward_at,omitempty"`
}

// LowStockItemDTO un producto en o por debajo de su stock mínimo.
type LowStockItemDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	MinStockQuantity  decimal.Decimal `json:"min_stock_quantity"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
}

// LedgerEntryDTO una entrada inmutable del libro de movimientos.
type LedgerEntryDTO struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	WarehouseID     string           `json:"warehouse_id"`
	TransactionType string           `json:"transaction_type"`
	TransactionID   string           `json:"transaction_id"`
	MovementType    string           `json:"movement_type"`
	Quantity        decimal.Decimal  `json:"quantity"`
	SerialID        *string          `json:"serial_id,omitempty"`
	OpeningQuantity decimal.Decimal  `json:"opening_quantity"`
	ClosingQuantity decimal.Decimal  `json:"closing_quantity"`
	Rate            *decimal.Decimal `json:"rate,omitempty"`
	GSTPercent      *decimal.Decimal `json:"gst_percent,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	PerformedBy     string           `json:"performed_by"`
	CreatedAt       time.Time        `json:"created_at"`
}
