package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AdjustmentRepository persiste ajustes (encabezado + líneas + seriales).
// Update reemplaza las líneas; solo es válido mientras el ajuste está en DRAFT.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.StockAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error)
	Update(ctx context.Context, adj *entity.StockAdjustment) error
	SaveHeader(ctx context.Context, adj *entity.StockAdjustment) error
}
