package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// TransferRepository persiste traslados (encabezado + líneas + referencias a
// seriales por id interno). Update reemplaza líneas mientras está en DRAFT.
type TransferRepository interface {
	Create(ctx context.Context, tr *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	Update(ctx context.Context, tr *entity.StockTransfer) error
	SaveHeader(ctx context.Context, tr *entity.StockTransfer) error
}
