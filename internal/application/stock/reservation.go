package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ReservationUseCase retiene stock a favor de una orden confirmada y lo libera
// al cancelar. El consumo al despachar lo hace el flujo de salida dentro de su
// propia transacción (ConsumeReservation).
type ReservationUseCase struct {
	tx     TxRunner
	engine *Engine
	log    *logger.Logger
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(tx TxRunner, engine *Engine, log *logger.Logger) *ReservationUseCase {
	return &ReservationUseCase{tx: tx, engine: engine, log: log}
}

// Reserve retiene, por cada línea planificada de la orden, la cantidad BOM en
// la bodega planificada. Se invoca al confirmar la orden. Idempotente por
// línea: si ya hay retención para (orden, producto, bodega) no duplica.
func (uc *ReservationUseCase) Reserve(ctx context.Context, orderID, userID string) error {
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		order, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
		}
		if order.Status != entity.OrderStatusConfirmed {
			return fmt.Errorf("%w: la orden %s no está confirmada (estado %s)",
				domain.ErrValidation, orderID, order.Status)
		}
		for i := range order.Lines {
			line := &order.Lines[i]
			existing, err := r.Reservations.GetForUpdate(ctx, orderID, line.ProductID, order.PlannedWarehouseID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			product, err := r.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
			}
			s, err := uc.engine.GetOrCreateStock(ctx, r, product, order.PlannedWarehouseID)
			if err != nil {
				return err
			}
			if err := uc.engine.Reserve(ctx, r, s, line.PlannedQuantity, userID); err != nil {
				return err
			}
			now := time.Now()
			res := &entity.StockReservation{
				ID:          uuid.New().String(),
				OrderID:     orderID,
				ProductID:   line.ProductID,
				WarehouseID: order.PlannedWarehouseID,
				Quantity:    line.PlannedQuantity,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := r.Reservations.Create(ctx, res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", orderID).Str("user_id", userID).Msg("stock reservado para la orden")
	return nil
}

// Release libera todas las retenciones restantes de la orden (cancelación).
func (uc *ReservationUseCase) Release(ctx context.Context, orderID, userID string) error {
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		reservations, err := r.Reservations.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			locked, err := r.Reservations.GetForUpdate(ctx, res.OrderID, res.ProductID, res.WarehouseID)
			if err != nil {
				return err
			}
			if locked == nil || !locked.Quantity.GreaterThan(decimal.Zero) {
				continue
			}
			s, err := r.Stocks.GetForUpdate(ctx, locked.ProductID, locked.WarehouseID)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("%w: agregado de stock para producto %s en bodega %s",
					domain.ErrNotFound, locked.ProductID, locked.WarehouseID)
			}
			if err := uc.engine.Release(ctx, r, s, locked.Quantity, userID); err != nil {
				return err
			}
			if err := r.Reservations.Delete(ctx, locked.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", orderID).Str("user_id", userID).Msg("reservas de la orden liberadas")
	return nil
}

// ConsumeReservation libera hasta quantity de la retención de (orden,
// producto, bodega) antes de un despacho, dentro de la transacción del flujo
// de salida. Devuelve lo efectivamente liberado (cero si no había retención).
func (e *Engine) ConsumeReservation(ctx context.Context, r *repository.Set, s *entity.Stock, orderID string, quantity decimal.Decimal, performedBy string) (decimal.Decimal, error) {
	res, err := r.Reservations.GetForUpdate(ctx, orderID, s.ProductID, s.WarehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	if res == nil {
		return decimal.Zero, nil
	}
	consume := decimal.Min(res.Quantity, quantity)
	if !consume.GreaterThan(decimal.Zero) {
		return decimal.Zero, nil
	}
	if err := e.Release(ctx, r, s, consume, performedBy); err != nil {
		return decimal.Zero, err
	}
	res.Quantity = res.Quantity.Sub(consume)
	res.UpdatedAt = time.Now()
	if res.Quantity.GreaterThan(decimal.Zero) {
		if err := r.Reservations.Save(ctx, res); err != nil {
			return decimal.Zero, err
		}
	} else if err := r.Reservations.Delete(ctx, res.ID); err != nil {
		return decimal.Zero, err
	}
	return consume, nil
}
