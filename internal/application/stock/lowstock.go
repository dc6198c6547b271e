package stock

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// LowStockUseCase genera el reporte de agregados en o por debajo de su stock
// mínimo para una bodega, con cantidad sugerida de pedido.
type LowStockUseCase struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

// NewLowStockUseCase construye el caso de uso con repositorios de solo lectura
// (atados al pool, no requiere transacción).
func NewLowStockUseCase(stockRepo repository.StockRepository, productRepo repository.ProductRepository) *LowStockUseCase {
	return &LowStockUseCase{stockRepo: stockRepo, productRepo: productRepo}
}

// List devuelve los productos bajo mínimo en la bodega, priorizados por el
// faltante relativo. Sugerido = 2*mínimo - físico (reponer hasta amortiguador).
func (uc *LowStockUseCase) List(ctx context.Context, warehouseID string) ([]dto.LowStockItemDTO, error) {
	stocks, err := uc.stockRepo.ListBelowMinimum(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return []dto.LowStockItemDTO{}, nil
	}

	two := decimal.NewFromInt(2)
	items := make([]dto.LowStockItemDTO, 0, len(stocks))
	for _, s := range stocks {
		product, err := uc.productRepo.GetByID(ctx, s.ProductID)
		if err != nil {
			return nil, err
		}
		name, sku := "", ""
		if product != nil {
			name, sku = product.Name, product.SKU
		}
		suggested := two.Mul(s.MinStockQuantity).Sub(s.QuantityOnHand)
		if suggested.LessThan(decimal.Zero) {
			suggested = decimal.Zero
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:         s.ProductID,
			SKU:               sku,
			ProductName:       name,
			WarehouseID:       s.WarehouseID,
			QuantityOnHand:    s.QuantityOnHand,
			QuantityAvailable: s.QuantityAvailable,
			MinStockQuantity:  s.MinStockQuantity,
			SuggestedOrderQty: suggested,
		})
	}

	// Faltante relativo más alto primero.
	sort.Slice(items, func(i, j int) bool {
		di := items[i].MinStockQuantity.Sub(items[i].QuantityOnHand)
		dj := items[j].MinStockQuantity.Sub(items[j].QuantityOnHand)
		return di.GreaterThan(dj)
	})
	return items, nil
}
