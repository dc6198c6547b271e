package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// SerialUnitRepository define el puerto de las unidades serializadas.
// Las resoluciones que preceden a un cambio de estado (emitir, bloquear,
// re-domiciliar) usan las variantes ForUpdate para evitar doble emisión.
type SerialUnitRepository interface {
	// GetBySerial resuelve por número de serial en (producto, bodega); nil si no existe.
	GetBySerial(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error)
	GetBySerialForUpdate(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error)
	GetByID(ctx context.Context, id string) (*entity.SerialUnit, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error)
	// ExistsInProductType verifica la unicidad compuesta (serial, tipo de producto).
	ExistsInProductType(ctx context.Context, serialNumber, productTypeID string) (bool, error)
	Create(ctx context.Context, unit *entity.SerialUnit) error
	Save(ctx context.Context, unit *entity.SerialUnit) error
	// Delete elimina una unidad aún AVAILABLE (solo ajustes IN en DRAFT).
	Delete(ctx context.Context, id string) error
}
