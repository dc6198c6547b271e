package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// QueryUseCase resuelve las lecturas del núcleo: agregados por bodega, el
// agregado puntual y el libro de movimientos. Usa repositorios de solo
// lectura atados al pool, sin transacción.
type QueryUseCase struct {
	stockRepo  repository.StockRepository
	ledgerRepo repository.LedgerRepository
	serialRepo repository.SerialUnitRepository
}

// NewQueryUseCase construye el caso de uso de lectura.
func NewQueryUseCase(stockRepo repository.StockRepository, ledgerRepo repository.LedgerRepository, serialRepo repository.SerialUnitRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, ledgerRepo: ledgerRepo, serialRepo: serialRepo}
}

// GetStock devuelve el agregado de (producto, bodega).
func (uc *QueryUseCase) GetStock(ctx context.Context, productID, warehouseID string) (*dto.StockDTO, error) {
	s, err := uc.stockRepo.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sin stock de %s en la bodega %s", domain.ErrNotFound, productID, warehouseID)
	}
	d := toStockDTO(s)
	return &d, nil
}

// ListByWarehouse devuelve los agregados de la bodega, paginados.
func (uc *QueryUseCase) ListByWarehouse(ctx context.Context, warehouseID string, page dto.PageRequest) ([]dto.StockDTO, error) {
	page.DefaultPage()
	stocks, err := uc.stockRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockDTO, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, toStockDTO(s))
	}
	return out, nil
}

// Ledger devuelve el libro de (producto, bodega), el más reciente primero.
func (uc *QueryUseCase) Ledger(ctx context.Context, productID, warehouseID string, page dto.PageRequest) ([]dto.LedgerEntryDTO, error) {
	page.DefaultPage()
	entries, err := uc.ledgerRepo.ListByStock(ctx, productID, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerDTO(e))
	}
	return out, nil
}

// LedgerByTransaction devuelve las entradas de un documento concreto.
func (uc *QueryUseCase) LedgerByTransaction(ctx context.Context, txnType entity.TransactionType, txnID string) ([]dto.LedgerEntryDTO, error) {
	entries, err := uc.ledgerRepo.ListByTransaction(ctx, txnType, txnID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerDTO(e))
	}
	return out, nil
}

// GetSerial resuelve una unidad por número de serial en (producto, bodega).
func (uc *QueryUseCase) GetSerial(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	unit, err := uc.serialRepo.GetBySerial(ctx, serialNumber, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: serial %s", domain.ErrNotFound, serialNumber)
	}
	return unit, nil
}

func toStockDTO(s *entity.Stock) dto.StockDTO {
	return dto.StockDTO{
		ProductID:         s.ProductID,
		WarehouseID:       s.WarehouseID,
		QuantityOnHand:    s.QuantityOnHand,
		QuantityReserved:  s.QuantityReserved,
		QuantityAvailable: s.QuantityAvailable,
		TrackingType:      string(s.TrackingType),
		MinStockQuantity:  s.MinStockQuantity,
		LastInwardAt:      s.LastInwardAt,
		LastOutwardAt:     s.LastOutwardAt,
	}
}

func toLedgerDTO(e *entity.LedgerEntry) dto.LedgerEntryDTO {
	return dto.LedgerEntryDTO{
		ID:              e.ID,
		ProductID:       e.ProductID,
		WarehouseID:     e.WarehouseID,
		TransactionType: string(e.TransactionType),
		TransactionID:   e.TransactionID,
		MovementType:    string(e.MovementType),
		Quantity:        e.Quantity,
		SerialID:        e.SerialID,
		OpeningQuantity: e.OpeningQuantity,
		ClosingQuantity: e.ClosingQuantity,
		Rate:            e.Rate,
		GSTPercent:      e.GSTPercent,
		Amount:          e.Amount,
		Reason:          e.Reason,
		PerformedBy:     e.PerformedBy,
		CreatedAt:       e.CreatedAt,
	}
}
