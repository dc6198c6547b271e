package entity

import "time"

// Estado de una unidad serializada.
type SerialStatus string

const (
	SerialAvailable SerialStatus = "AVAILABLE" // en bodega, lista para salir
	SerialIssued    SerialStatus = "ISSUED"    // emitida por un documento de salida
	SerialBlocked   SerialStatus = "BLOCKED"   // dada de baja por daño/pérdida (terminal)
)

// SerialUnit es una instancia física identificable de un producto serializado.
// La máquina de estados es AVAILABLE -> ISSUED (salida) -> AVAILABLE (reverso
// del documento), y AVAILABLE -> BLOCKED (ajuste de baja, sin camino de vuelta).
// La unicidad del número de serial es por tipo de producto, no por producto
// ni global: dos tipos distintos pueden reusar la misma cadena.
type SerialUnit struct {
	ID            string
	SerialNumber  string
	ProductID     string
	ProductTypeID string
	WarehouseID   string
	StockID       string // agregado al que está ligada la unidad
	Status        SerialStatus
	InwardAt      time.Time
	OutwardAt     *time.Time
	OutboundRef   string // documento de salida que la emitió
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
