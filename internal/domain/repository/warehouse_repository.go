package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// WarehouseRepository es el puerto estrecho hacia las bodegas (colaborador
// externo) más la consulta de membresía de encargados, que la capa de datos
// exige para documentos de salida.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	// IsManager indica si el usuario está registrado como encargado de la bodega.
	IsManager(ctx context.Context, warehouseID, userID string) (bool, error)
}
