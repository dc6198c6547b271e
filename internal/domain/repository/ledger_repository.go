package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// LedgerRepository define el puerto del libro de movimientos, solo-añadir.
// No existe update ni delete: las correcciones son entradas nuevas de reverso.
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	ListByStock(ctx context.Context, productID, warehouseID string, limit, offset int) ([]*entity.LedgerEntry, error)
	ListByTransaction(ctx context.Context, txnType entity.TransactionType, txnID string) ([]*entity.LedgerEntry, error)
}
