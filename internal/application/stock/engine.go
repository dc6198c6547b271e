package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Engine es el motor compartido de mutación de stock: create-or-fetch atómico
// del agregado por (producto, bodega) e incremento/decremento bajo bloqueo de
// fila. Todos los flujos (recepción, salida, ajuste, traslado) lo usan dentro
// de la transacción del caller.
type Engine struct{}

// NewEngine construye el motor. No guarda estado: opera sobre el Set recibido.
func NewEngine() *Engine {
	return &Engine{}
}

// GetOrCreateStock devuelve el agregado existente con la fila bloqueada
// (SELECT FOR UPDATE) o crea uno nuevo sembrado desde el producto. Idempotente:
// nunca crea un duplicado para la misma clave; si otra transacción gana la
// carrera de inserción (23505), se re-bloquea la fila ganadora.
func (e *Engine) GetOrCreateStock(ctx context.Context, r *repository.Set, product *entity.Product, warehouseID string) (*entity.Stock, error) {
	s, err := r.Stocks.GetForUpdate(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	now := time.Now()
	s = &entity.Stock{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		WarehouseID:      warehouseID,
		TrackingType:     product.EffectiveTracking(),
		MinStockQuantity: product.MinStockQuantity,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.Stocks.Create(ctx, s); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Otra transacción creó la fila primero: bloquear la existente.
			return r.Stocks.GetForUpdate(ctx, product.ID, warehouseID)
		}
		return nil, err
	}
	return s, nil
}

// UpdateStockQuantities suma o resta quantity a físico y disponible en bloque,
// estampa LastInwardAt/LastOutwardAt y LastUpdatedBy, y persiste. Debe
// ejecutarse dentro de la transacción del caller con la fila bloqueada durante
// toda la mutación. Una salida que dejaría el disponible negativo falla con
// ErrInsufficientStock sin tocar el agregado.
func (e *Engine) UpdateStockQuantities(ctx context.Context, r *repository.Set, s *entity.Stock, quantity decimal.Decimal, performedBy string, inward bool) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad del movimiento debe ser positiva", domain.ErrValidation)
	}
	now := time.Now()
	if inward {
		s.QuantityOnHand = s.QuantityOnHand.Add(quantity)
		s.LastInwardAt = &now
	} else {
		if s.QuantityAvailable.LessThan(quantity) {
			return fmt.Errorf("%w: disponible %s, solicitado %s en bodega %s",
				domain.ErrInsufficientStock, s.QuantityAvailable.String(), quantity.String(), s.WarehouseID)
		}
		s.QuantityOnHand = s.QuantityOnHand.Sub(quantity)
		s.LastOutwardAt = &now
	}
	s.RecomputeAvailable()
	s.LastUpdatedBy = performedBy
	s.UpdatedAt = now
	return r.Stocks.Save(ctx, s)
}

// Reserve retiene quantity a favor de una orden: sube lo reservado y baja el
// disponible manteniendo el físico intacto. Falla si el disponible no alcanza.
func (e *Engine) Reserve(ctx context.Context, r *repository.Set, s *entity.Stock, quantity decimal.Decimal, performedBy string) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad a reservar debe ser positiva", domain.ErrValidation)
	}
	if s.QuantityAvailable.LessThan(quantity) {
		return fmt.Errorf("%w: disponible %s, se intentó reservar %s",
			domain.ErrInsufficientStock, s.QuantityAvailable.String(), quantity.String())
	}
	s.QuantityReserved = s.QuantityReserved.Add(quantity)
	s.RecomputeAvailable()
	s.LastUpdatedBy = performedBy
	s.UpdatedAt = time.Now()
	return r.Stocks.Save(ctx, s)
}

// Release devuelve quantity reservada al disponible (consumo al despachar o
// liberación al cancelar la orden).
func (e *Engine) Release(ctx context.Context, r *repository.Set, s *entity.Stock, quantity decimal.Decimal, performedBy string) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad a liberar debe ser positiva", domain.ErrValidation)
	}
	if s.QuantityReserved.LessThan(quantity) {
		return fmt.Errorf("%w: reservado %s, se intentó liberar %s",
			domain.ErrConflict, s.QuantityReserved.String(), quantity.String())
	}
	s.QuantityReserved = s.QuantityReserved.Sub(quantity)
	s.RecomputeAvailable()
	s.LastUpdatedBy = performedBy
	s.UpdatedAt = time.Now()
	return r.Stocks.Save(ctx, s)
}
