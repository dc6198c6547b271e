package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ValidateSerialAvailable resuelve el serial en (producto, bodega) y exige
// estado AVAILABLE, bloqueando la fila para impedir doble emisión. Devuelve la
// unidad lista para transicionar, o un error descriptivo.
func (e *Engine) ValidateSerialAvailable(ctx context.Context, r *repository.Set, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	unit, err := r.Serials.GetBySerialForUpdate(ctx, serialNumber, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: serial %q no existe para el producto en la bodega %s",
			domain.ErrNotFound, serialNumber, warehouseID)
	}
	if unit.Status != entity.SerialAvailable {
		return nil, fmt.Errorf("%w: serial %q está en estado %s",
			domain.ErrSerialNotAvailable, serialNumber, unit.Status)
	}
	return unit, nil
}

// ValidateSerialNotExists acepta seriales recién hallados: exige que el serial
// no exista en (producto, bodega) y que no colisione dentro del ámbito del
// tipo de producto (dos tipos distintos pueden reusar la cadena; dos productos
// del mismo tipo no).
func (e *Engine) ValidateSerialNotExists(ctx context.Context, r *repository.Set, serialNumber string, product *entity.Product, warehouseID string) error {
	unit, err := r.Serials.GetBySerial(ctx, serialNumber, product.ID, warehouseID)
	if err != nil {
		return err
	}
	if unit != nil {
		return fmt.Errorf("%w: serial %q ya existe para el producto en la bodega %s",
			domain.ErrSerialAlreadyExists, serialNumber, warehouseID)
	}
	exists, err := r.Serials.ExistsInProductType(ctx, serialNumber, product.ProductTypeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: serial %q ya registrado en el tipo de producto %s",
			domain.ErrSerialAlreadyExists, serialNumber, product.ProductTypeID)
	}
	return nil
}

// RegisterSerial crea una unidad nueva en AVAILABLE ligada al agregado, tras
// pasar la validación de no-existencia.
func (e *Engine) RegisterSerial(ctx context.Context, r *repository.Set, serialNumber string, product *entity.Product, s *entity.Stock) (*entity.SerialUnit, error) {
	if err := e.ValidateSerialNotExists(ctx, r, serialNumber, product, s.WarehouseID); err != nil {
		return nil, err
	}
	now := time.Now()
	unit := &entity.SerialUnit{
		ID:            uuid.New().String(),
		SerialNumber:  serialNumber,
		ProductID:     product.ID,
		ProductTypeID: product.ProductTypeID,
		WarehouseID:   s.WarehouseID,
		StockID:       s.ID,
		Status:        entity.SerialAvailable,
		InwardAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.Serials.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// IssueSerial transiciona AVAILABLE -> ISSUED con marca de salida y referencia
// al documento que la emite. La unidad debe venir de ValidateSerialAvailable
// (fila ya bloqueada).
func (e *Engine) IssueSerial(ctx context.Context, r *repository.Set, unit *entity.SerialUnit, documentRef string) error {
	if unit.Status != entity.SerialAvailable {
		return fmt.Errorf("%w: serial %q está en estado %s", domain.ErrSerialNotAvailable,
			unit.SerialNumber, unit.Status)
	}
	now := time.Now()
	unit.Status = entity.SerialIssued
	unit.OutwardAt = &now
	unit.OutboundRef = documentRef
	unit.UpdatedAt = now
	return r.Serials.Save(ctx, unit)
}

// RestoreSerial ejecuta el reverso de una emisión: ISSUED -> AVAILABLE.
func (e *Engine) RestoreSerial(ctx context.Context, r *repository.Set, unit *entity.SerialUnit) error {
	if unit.Status != entity.SerialIssued {
		return fmt.Errorf("%w: serial %q está en estado %s, no ISSUED",
			domain.ErrConflict, unit.SerialNumber, unit.Status)
	}
	unit.Status = entity.SerialAvailable
	unit.OutwardAt = nil
	unit.OutboundRef = ""
	unit.UpdatedAt = time.Now()
	return r.Serials.Save(ctx, unit)
}

// BlockSerial da de baja una unidad por daño o pérdida: AVAILABLE -> BLOCKED.
// No existe camino de desbloqueo.
func (e *Engine) BlockSerial(ctx context.Context, r *repository.Set, unit *entity.SerialUnit) error {
	if unit.Status != entity.SerialAvailable {
		return fmt.Errorf("%w: serial %q está en estado %s", domain.ErrSerialNotAvailable,
			unit.SerialNumber, unit.Status)
	}
	unit.Status = entity.SerialBlocked
	unit.UpdatedAt = time.Now()
	return r.Serials.Save(ctx, unit)
}
