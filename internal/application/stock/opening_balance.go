package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/Almacen-api/internal/domain/stock"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// OpeningBalanceUseCase siembra el saldo inicial de un producto en una bodega
// como un movimiento IN con origen OPENING_BALANCE. Para productos
// serializados, declara los seriales iniciales una unidad a la vez.
type OpeningBalanceUseCase struct {
	tx     TxRunner
	engine *Engine
	log    *logger.Logger
}

// NewOpeningBalanceUseCase construye el caso de uso.
func NewOpeningBalanceUseCase(tx TxRunner, engine *Engine, log *logger.Logger) *OpeningBalanceUseCase {
	return &OpeningBalanceUseCase{tx: tx, engine: engine, log: log}
}

// OpeningBalanceInput entrada para registrar un saldo inicial.
type OpeningBalanceInput struct {
	ProductID     string
	WarehouseID   string
	Quantity      decimal.Decimal
	Rate          *decimal.Decimal
	SerialNumbers []string
	UserID        string
}

// Register abre una transacción, bloquea (o crea) el agregado y escribe el
// movimiento de apertura con su entrada de libro. Todo-o-nada.
func (uc *OpeningBalanceUseCase) Register(ctx context.Context, in OpeningBalanceInput) error {
	if err := domstock.ValidateQuantity(in.Quantity); err != nil {
		return err
	}
	txID := uuid.New().String()

	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		wh, err := r.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}

		s, err := uc.engine.GetOrCreateStock(ctx, r, product, in.WarehouseID)
		if err != nil {
			return err
		}

		if product.EffectiveTracking() == entity.TrackingSerial {
			if err := domstock.ValidateSerialCount(in.Quantity, len(in.SerialNumbers)); err != nil {
				return err
			}
			for _, sn := range in.SerialNumbers {
				unit, err := uc.engine.RegisterSerial(ctx, r, sn, product, s)
				if err != nil {
					return err
				}
				p := LedgerParams{
					TransactionType: entity.TxnOpeningBalance,
					TransactionID:   txID,
					MovementType:    entity.MovementIn,
					Quantity:        decimal.NewFromInt(1),
					SerialID:        &unit.ID,
					Rate:            in.Rate,
					PerformedBy:     in.UserID,
				}
				if _, err := uc.engine.ApplyMovement(ctx, r, s, p); err != nil {
					return err
				}
			}
			return nil
		}

		p := LedgerParams{
			TransactionType: entity.TxnOpeningBalance,
			TransactionID:   txID,
			MovementType:    entity.MovementIn,
			Quantity:        in.Quantity,
			Rate:            in.Rate,
			PerformedBy:     in.UserID,
		}
		_, err = uc.engine.ApplyMovement(ctx, r, s, p)
		return err
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("warehouse_id", in.WarehouseID).
		Str("quantity", in.Quantity.String()).
		Msg("saldo inicial registrado")
	return nil
}
