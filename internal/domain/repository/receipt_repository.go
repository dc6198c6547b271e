package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// PurchaseReceiptRepository persiste recepciones (encabezado + líneas +
// seriales declarados). Update reemplaza las líneas completas: mientras el
// encabezado está en DRAFT, las líneas se destruyen y recrean con él.
type PurchaseReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.PurchaseReceipt) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseReceipt, error)
	Update(ctx context.Context, receipt *entity.PurchaseReceipt) error
	// SaveHeader persiste solo estado y marcas del encabezado.
	SaveHeader(ctx context.Context, receipt *entity.PurchaseReceipt) error
}
