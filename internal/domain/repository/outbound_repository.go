package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// OutboundRepository persiste documentos de salida (encabezado + líneas).
type OutboundRepository interface {
	Create(ctx context.Context, doc *entity.OutboundDocument) error
	GetByID(ctx context.Context, id string) (*entity.OutboundDocument, error)
	// Delete elimina el documento y sus líneas (el reverso de stock y seriales
	// corre en la misma transacción, a cargo del caso de uso).
	Delete(ctx context.Context, id string) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OutboundDocument, error)
	// SumShippedByOrder agrega, por producto, lo ya despachado por todos los
	// documentos hermanos de la orden.
	SumShippedByOrder(ctx context.Context, orderID string) (map[string]decimal.Decimal, error)
}
