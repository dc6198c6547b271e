package adjustment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/Almacen-api/internal/domain/stock"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// UseCase orquesta los ajustes de inventario: DRAFT (mutable) -> APPROVED
// (solo cambio de estado) -> POSTED (mueve stock, terminal). Las validaciones
// de creación se repiten al contabilizar bajo bloqueo de fila: el mundo pudo
// cambiar entre el borrador y el posteo.
type UseCase struct {
	tx     stock.TxRunner
	engine *stock.Engine
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx stock.TxRunner, engine *stock.Engine, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, engine: engine, log: log}
}

// Create crea un ajuste en DRAFT. Las líneas OUT validan que sus seriales
// estén AVAILABLE; las líneas IN (hallazgo) registran sus seriales de una vez,
// de modo que la colisión de serial se rechaza al crear, no al contabilizar.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateAdjustmentRequest) (*entity.StockAdjustment, error) {
	adjType, err := parseType(in.Type)
	if err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el ajuste no tiene líneas", domain.ErrValidation)
	}

	var adj *entity.StockAdjustment
	err = uc.tx.Run(ctx, func(r *repository.Set) error {
		wh, err := r.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}

		now := time.Now()
		adj = &entity.StockAdjustment{
			ID:               uuid.New().String(),
			CompanyID:        companyID,
			WarehouseID:      in.WarehouseID,
			AdjustmentNumber: in.AdjustmentNumber,
			Type:             adjType,
			Status:           entity.AdjustmentStatusDraft,
			Reason:           in.Reason,
			CreatedBy:        userID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		for _, lineIn := range in.Lines {
			line, err := uc.buildLine(ctx, r, adj, lineIn)
			if err != nil {
				return err
			}
			adj.Lines = append(adj.Lines, *line)
		}
		return r.Adjustments.Create(ctx, adj)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("adjustment_id", adj.ID).
		Str("type", string(adj.Type)).
		Int("lines", len(adj.Lines)).
		Msg("ajuste creado en borrador")
	return adj, nil
}

// parseType valida el tipo de ajuste declarado.
func parseType(raw string) (entity.AdjustmentType, error) {
	t := entity.AdjustmentType(raw)
	switch t {
	case entity.AdjustmentFound, entity.AdjustmentDamage, entity.AdjustmentLoss, entity.AdjustmentAudit:
		return t, nil
	}
	return "", fmt.Errorf("%w: tipo de ajuste %q desconocido", domain.ErrValidation, raw)
}

// buildLine valida una línea (las de salida contra el disponible del agregado)
// y, si es IN serializada, registra sus unidades.
func (uc *UseCase) buildLine(ctx context.Context, r *repository.Set, adj *entity.StockAdjustment, in dto.AdjustmentLineRequest) (*entity.AdjustmentLine, error) {
	if err := domstock.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	direction, implied := entity.DirectionFor(adj.Type)
	if !implied {
		direction = entity.MovementType(in.Direction)
		if direction != entity.MovementIn && direction != entity.MovementOut {
			return nil, fmt.Errorf("%w: las líneas de auditoría exigen dirección IN u OUT", domain.ErrValidation)
		}
	}

	product, err := r.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	tracking := product.EffectiveTracking()
	if tracking == entity.TrackingSerial {
		if err := domstock.ValidateSerialCount(in.Quantity, len(in.SerialNumbers)); err != nil {
			return nil, err
		}
	}
	if direction == entity.MovementOut {
		s, err := r.Stocks.Get(ctx, product.ID, adj.WarehouseID)
		if err != nil {
			return nil, err
		}
		available := decimal.Zero
		if s != nil {
			available = s.QuantityAvailable
		}
		if available.LessThan(in.Quantity) {
			return nil, fmt.Errorf("%w: disponible %s, la línea de salida declara %s",
				domain.ErrInsufficientStock, available.String(), in.Quantity.String())
		}
	}

	line := &entity.AdjustmentLine{
		ID:            uuid.New().String(),
		AdjustmentID:  adj.ID,
		ProductID:     product.ID,
		Direction:     direction,
		TrackingType:  tracking,
		Quantity:      in.Quantity,
		SerialNumbers: in.SerialNumbers,
	}
	if tracking != entity.TrackingSerial {
		return line, nil
	}

	switch direction {
	case entity.MovementOut:
		for _, sn := range line.SerialNumbers {
			if _, err := uc.engine.ValidateSerialAvailable(ctx, r, sn, product.ID, adj.WarehouseID); err != nil {
				return nil, err
			}
		}
	case entity.MovementIn:
		s, err := uc.engine.GetOrCreateStock(ctx, r, product, adj.WarehouseID)
		if err != nil {
			return nil, err
		}
		for _, sn := range line.SerialNumbers {
			if _, err := uc.engine.RegisterSerial(ctx, r, sn, product, s); err != nil {
				return nil, err
			}
		}
	}
	return line, nil
}

// Update reemplaza encabezado y líneas de un ajuste en DRAFT. Los seriales de
// hallazgo registrados por la versión anterior que sigan AVAILABLE se
// eliminan antes de reconstruir las líneas.
func (uc *UseCase) Update(ctx context.Context, adjustmentID, userID string, in dto.CreateAdjustmentRequest) (*entity.StockAdjustment, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el ajuste no tiene líneas", domain.ErrValidation)
	}

	var adj *entity.StockAdjustment
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		adj, err = r.Adjustments.GetByID(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if adj == nil {
			return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adjustmentID)
		}
		if adj.Status != entity.AdjustmentStatusDraft {
			return fmt.Errorf("%w: el ajuste %s está en estado %s, solo DRAFT es editable",
				domain.ErrValidation, adjustmentID, adj.Status)
		}

		if err := uc.unregisterFoundSerials(ctx, r, adj); err != nil {
			return err
		}

		if in.Type != "" {
			adjType, err := parseType(in.Type)
			if err != nil {
				return err
			}
			adj.Type = adjType
		}
		if in.AdjustmentNumber != "" {
			adj.AdjustmentNumber = in.AdjustmentNumber
		}
		adj.Reason = in.Reason
		adj.Lines = nil
		adj.UpdatedAt = time.Now()
		for _, lineIn := range in.Lines {
			line, err := uc.buildLine(ctx, r, adj, lineIn)
			if err != nil {
				return err
			}
			adj.Lines = append(adj.Lines, *line)
		}
		return r.Adjustments.Update(ctx, adj)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("adjustment_id", adjustmentID).Str("user_id", userID).Msg("ajuste actualizado")
	return adj, nil
}

// unregisterFoundSerials elimina las unidades registradas por líneas IN del
// borrador anterior mientras sigan AVAILABLE; si alguna ya salió o se bloqueó,
// el borrador no puede reescribirse.
func (uc *UseCase) unregisterFoundSerials(ctx context.Context, r *repository.Set, adj *entity.StockAdjustment) error {
	for i := range adj.Lines {
		line := &adj.Lines[i]
		if line.Direction != entity.MovementIn || line.TrackingType != entity.TrackingSerial {
			continue
		}
		for _, sn := range line.SerialNumbers {
			unit, err := r.Serials.GetBySerialForUpdate(ctx, sn, line.ProductID, adj.WarehouseID)
			if err != nil {
				return err
			}
			if unit == nil {
				continue
			}
			if unit.Status != entity.SerialAvailable {
				return fmt.Errorf("%w: el serial %s ya no está AVAILABLE, el borrador no puede editarse",
					domain.ErrConflict, sn)
			}
			if err := r.Serials.Delete(ctx, unit.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Approve pasa DRAFT -> APPROVED. Solo estampa quién y cuándo; el stock se
// mueve al contabilizar.
func (uc *UseCase) Approve(ctx context.Context, adjustmentID, userID string) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		adj, err = r.Adjustments.GetByID(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if adj == nil {
			return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adjustmentID)
		}
		if adj.Status != entity.AdjustmentStatusDraft {
			return fmt.Errorf("%w: el ajuste %s está en estado %s, no DRAFT",
				domain.ErrValidation, adjustmentID, adj.Status)
		}
		now := time.Now()
		adj.Status = entity.AdjustmentStatusApproved
		adj.ApprovedBy = userID
		adj.ApprovedAt = &now
		adj.UpdatedAt = now
		return r.Adjustments.SaveHeader(ctx, adj)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("adjustment_id", adjustmentID).Str("user_id", userID).Msg("ajuste aprobado")
	return adj, nil
}

// Post contabiliza un ajuste APPROVED: re-valida cada línea bajo bloqueo de
// fila (lo validado al crear pudo dejar de ser cierto), mueve stock, bloquea
// los seriales de salida y escribe una entrada de libro por línea. POSTED es
// terminal; la corrección de un ajuste contabilizado es otro ajuste.
func (uc *UseCase) Post(ctx context.Context, adjustmentID, userID string) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		adj, err = r.Adjustments.GetByID(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if adj == nil {
			return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adjustmentID)
		}
		if adj.Status != entity.AdjustmentStatusApproved {
			return fmt.Errorf("%w: el ajuste %s está en estado %s, no APPROVED",
				domain.ErrValidation, adjustmentID, adj.Status)
		}

		for i := range adj.Lines {
			if err := uc.postLine(ctx, r, adj, &adj.Lines[i], userID); err != nil {
				return err
			}
		}

		now := time.Now()
		adj.Status = entity.AdjustmentStatusPosted
		adj.PostedBy = userID
		adj.PostedAt = &now
		adj.UpdatedAt = now
		return r.Adjustments.SaveHeader(ctx, adj)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("adjustment_id", adjustmentID).Str("user_id", userID).Msg("ajuste contabilizado")
	return adj, nil
}

// postLine mueve el stock de una línea. Los seriales de salida pasan a
// BLOCKED (baja terminal). La línea escribe UNA entrada de libro agregada,
// sin serial, sea cual sea el seguimiento.
func (uc *UseCase) postLine(ctx context.Context, r *repository.Set, adj *entity.StockAdjustment, line *entity.AdjustmentLine, userID string) error {
	product, err := r.Products.GetByID(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
	}
	s, err := uc.engine.GetOrCreateStock(ctx, r, product, adj.WarehouseID)
	if err != nil {
		return err
	}

	if line.TrackingType == entity.TrackingSerial {
		switch line.Direction {
		case entity.MovementOut:
			for _, sn := range line.SerialNumbers {
				unit, err := uc.engine.ValidateSerialAvailable(ctx, r, sn, product.ID, adj.WarehouseID)
				if err != nil {
					return err
				}
				if err := uc.engine.BlockSerial(ctx, r, unit); err != nil {
					return err
				}
			}
		case entity.MovementIn:
			// Registradas al crear el borrador; aquí solo se verifica que sigan ahí.
			for _, sn := range line.SerialNumbers {
				if _, err := uc.engine.ValidateSerialAvailable(ctx, r, sn, product.ID, adj.WarehouseID); err != nil {
					return err
				}
			}
		}
	}

	p := stock.LedgerParams{
		TransactionType: entity.TxnStockAdjustment,
		TransactionID:   adj.ID,
		MovementType:    line.Direction,
		Quantity:        line.Quantity,
		Reason:          adj.Reason,
		PerformedBy:     userID,
	}
	_, err = uc.engine.ApplyMovement(ctx, r, s, p)
	return err
}

// Get devuelve el ajuste con sus líneas.
func (uc *UseCase) Get(ctx context.Context, adjustmentID string) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		adj, err = r.Adjustments.GetByID(ctx, adjustmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adjustmentID)
	}
	return adj, nil
}
