package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
// La membresía de encargados se consulta vía repositorio (IsManager) y se
// exige en la capa de datos para documentos de salida.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
