package memory

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Envolturas con bloqueo por llamada para lecturas fuera de transacción
// (equivalen a los repos atados al pool en PostgreSQL).

type lockedStockRepo struct{ s *Store }

func (r *lockedStockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&stockRepo{r.s.data}).Get(ctx, productID, warehouseID)
}

func (r *lockedStockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *lockedStockRepo) Create(ctx context.Context, s *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&stockRepo{r.s.data}).Create(ctx, s)
}

func (r *lockedStockRepo) Save(ctx context.Context, s *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&stockRepo{r.s.data}).Save(ctx, s)
}

func (r *lockedStockRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&stockRepo{r.s.data}).ListByWarehouse(ctx, warehouseID, limit, offset)
}

func (r *lockedStockRepo) ListBelowMinimum(ctx context.Context, warehouseID string) ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&stockRepo{r.s.data}).ListBelowMinimum(ctx, warehouseID)
}

type lockedSerialRepo struct{ s *Store }

func (r *lockedSerialRepo) GetBySerial(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&serialRepo{r.s.data}).GetBySerial(ctx, serialNumber, productID, warehouseID)
}

func (r *lockedSerialRepo) GetBySerialForUpdate(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	return r.GetBySerial(ctx, serialNumber, productID, warehouseID)
}

func (r *lockedSerialRepo) GetByID(ctx context.Context, id string) (*entity.SerialUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&serialRepo{r.s.data}).GetByID(ctx, id)
}

func (r *lockedSerialRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *lockedSerialRepo) ExistsInProductType(ctx context.Context, serialNumber, productTypeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&serialRepo{r.s.data}).ExistsInProductType(ctx, serialNumber, productTypeID)
}

func (r *lockedSerialRepo) Create(ctx context.Context, u *entity.SerialUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&serialRepo{r.s.data}).Create(ctx, u)
}

func (r *lockedSerialRepo) Save(ctx context.Context, u *entity.SerialUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&serialRepo{r.s.data}).Save(ctx, u)
}

func (r *lockedSerialRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&serialRepo{r.s.data}).Delete(ctx, id)
}

type lockedLedgerRepo struct{ s *Store }

func (r *lockedLedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&ledgerRepo{r.s.data}).Create(ctx, e)
}

func (r *lockedLedgerRepo) ListByStock(ctx context.Context, productID, warehouseID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&ledgerRepo{r.s.data}).ListByStock(ctx, productID, warehouseID, limit, offset)
}

func (r *lockedLedgerRepo) ListByTransaction(ctx context.Context, txnType entity.TransactionType, txnID string) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&ledgerRepo{r.s.data}).ListByTransaction(ctx, txnType, txnID)
}

type lockedProductRepo struct{ s *Store }

func (r *lockedProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&productRepo{r.s.data}).GetByID(ctx, id)
}
