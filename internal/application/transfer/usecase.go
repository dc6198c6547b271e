package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	domstock "github.com/jhoicas/Almacen-api/internal/domain/stock"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// UseCase orquesta los traslados entre bodegas. El movimiento físico ocurre al
// aprobar: OUT en origen e IN en destino como par de entradas con el mismo
// identificador de transacción, y los seriales se re-domicilian al destino.
// Recibir es solo un acuse, sin efecto adicional sobre stock.
type UseCase struct {
	tx     stock.TxRunner
	engine *stock.Engine
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx stock.TxRunner, engine *stock.Engine, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, engine: engine, log: log}
}

// Create crea un traslado en DRAFT entre dos bodegas distintas. Las líneas
// serializadas referencian sus unidades por identificador interno; la
// residencia y el estado se verifican aquí y se re-verifican al aprobar.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateTransferRequest) (*entity.StockTransfer, error) {
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, fmt.Errorf("%w: origen y destino deben ser bodegas distintas", domain.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el traslado no tiene líneas", domain.ErrValidation)
	}

	var tr *entity.StockTransfer
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		for _, id := range []string{in.SourceWarehouseID, in.DestinationWarehouseID} {
			wh, err := r.Warehouses.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if wh == nil {
				return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
			}
		}

		now := time.Now()
		tr = &entity.StockTransfer{
			ID:                     uuid.New().String(),
			CompanyID:              companyID,
			TransferNumber:         in.TransferNumber,
			SourceWarehouseID:      in.SourceWarehouseID,
			DestinationWarehouseID: in.DestinationWarehouseID,
			Status:                 entity.TransferStatusDraft,
			CreatedBy:              userID,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		for _, lineIn := range in.Lines {
			line, err := uc.buildLine(ctx, r, tr, lineIn)
			if err != nil {
				return err
			}
			tr.Lines = append(tr.Lines, *line)
		}
		return r.Transfers.Create(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", tr.ID).
		Str("source", tr.SourceWarehouseID).
		Str("destination", tr.DestinationWarehouseID).
		Msg("traslado creado en borrador")
	return tr, nil
}

func (uc *UseCase) buildLine(ctx context.Context, r *repository.Set, tr *entity.StockTransfer, in dto.TransferLineRequest) (*entity.TransferLine, error) {
	if err := domstock.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
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
		if err := domstock.ValidateSerialCount(in.Quantity, len(in.SerialIDs)); err != nil {
			return nil, err
		}
		for _, sid := range in.SerialIDs {
			unit, err := r.Serials.GetByID(ctx, sid)
			if err != nil {
				return nil, err
			}
			if err := uc.checkUnit(unit, sid, product.ID, tr.SourceWarehouseID); err != nil {
				return nil, err
			}
		}
	}
	return &entity.TransferLine{
		ID:           uuid.New().String(),
		TransferID:   tr.ID,
		ProductID:    product.ID,
		TrackingType: tracking,
		Quantity:     in.Quantity,
		SerialIDs:    in.SerialIDs,
	}, nil
}

// checkUnit exige que la unidad exista, pertenezca al producto, resida en la
// bodega de origen y esté AVAILABLE.
func (uc *UseCase) checkUnit(unit *entity.SerialUnit, id, productID, sourceWarehouseID string) error {
	if unit == nil {
		return fmt.Errorf("%w: serial %s", domain.ErrNotFound, id)
	}
	if unit.ProductID != productID {
		return fmt.Errorf("%w: el serial %s no pertenece al producto %s",
			domain.ErrValidation, unit.SerialNumber, productID)
	}
	if unit.WarehouseID != sourceWarehouseID {
		return fmt.Errorf("%w: el serial %s no reside en la bodega de origen %s",
			domain.ErrSerialNotAvailable, unit.SerialNumber, sourceWarehouseID)
	}
	if unit.Status != entity.SerialAvailable {
		return fmt.Errorf("%w: el serial %s está %s",
			domain.ErrSerialNotAvailable, unit.SerialNumber, unit.Status)
	}
	return nil
}

// Update reemplaza encabezado y líneas de un traslado en DRAFT.
func (uc *UseCase) Update(ctx context.Context, transferID, userID string, in dto.CreateTransferRequest) (*entity.StockTransfer, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el traslado no tiene líneas", domain.ErrValidation)
	}

	var tr *entity.StockTransfer
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		tr, err = r.Transfers.GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
		}
		if tr.Status != entity.TransferStatusDraft {
			return fmt.Errorf("%w: el traslado %s está en estado %s, solo DRAFT es editable",
				domain.ErrValidation, transferID, tr.Status)
		}
		if in.SourceWarehouseID != "" {
			tr.SourceWarehouseID = in.SourceWarehouseID
		}
		if in.DestinationWarehouseID != "" {
			tr.DestinationWarehouseID = in.DestinationWarehouseID
		}
		if tr.SourceWarehouseID == tr.DestinationWarehouseID {
			return fmt.Errorf("%w: origen y destino deben ser bodegas distintas", domain.ErrValidation)
		}
		if in.TransferNumber != "" {
			tr.TransferNumber = in.TransferNumber
		}

		tr.Lines = nil
		tr.UpdatedAt = time.Now()
		for _, lineIn := range in.Lines {
			line, err := uc.buildLine(ctx, r, tr, lineIn)
			if err != nil {
				return err
			}
			tr.Lines = append(tr.Lines, *line)
		}
		return r.Transfers.Update(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", transferID).Str("user_id", userID).Msg("traslado actualizado")
	return tr, nil
}

// Approve ejecuta el movimiento físico del traslado: con los agregados de
// origen y destino bloqueados, re-valida suficiencia y seriales, escribe el
// par OUT/IN por línea compartiendo el identificador del traslado como
// transacción, y re-domicilia los seriales al destino. El traslado queda
// IN_TRANSIT.
func (uc *UseCase) Approve(ctx context.Context, transferID, userID string) (*entity.StockTransfer, error) {
	var tr *entity.StockTransfer
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		tr, err = r.Transfers.GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
		}
		if tr.Status != entity.TransferStatusDraft {
			return fmt.Errorf("%w: el traslado %s está en estado %s, no DRAFT",
				domain.ErrValidation, transferID, tr.Status)
		}

		for i := range tr.Lines {
			if err := uc.moveLine(ctx, r, tr, &tr.Lines[i], userID); err != nil {
				return err
			}
		}

		now := time.Now()
		tr.Status = entity.TransferStatusInTransit
		tr.ApprovedBy = userID
		tr.ApprovedAt = &now
		tr.UpdatedAt = now
		return r.Transfers.SaveHeader(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", transferID).Str("user_id", userID).Msg("traslado aprobado y en tránsito")
	return tr, nil
}

// moveLine mueve una línea: OUT en origen (falla con ErrInsufficientStock si
// el disponible no alcanza) e IN en destino, ambos con TransactionID igual al
// id del traslado. Los seriales se re-domicilian bajo bloqueo.
func (uc *UseCase) moveLine(ctx context.Context, r *repository.Set, tr *entity.StockTransfer, line *entity.TransferLine, userID string) error {
	product, err := r.Products.GetByID(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
	}
	src, err := uc.engine.GetOrCreateStock(ctx, r, product, tr.SourceWarehouseID)
	if err != nil {
		return err
	}
	dst, err := uc.engine.GetOrCreateStock(ctx, r, product, tr.DestinationWarehouseID)
	if err != nil {
		return err
	}

	out := stock.LedgerParams{
		TransactionType: entity.TxnStockTransfer,
		TransactionID:   tr.ID,
		MovementType:    entity.MovementOut,
		Quantity:        line.Quantity,
		PerformedBy:     userID,
	}
	if _, err := uc.engine.ApplyMovement(ctx, r, src, out); err != nil {
		return err
	}

	in := stock.LedgerParams{
		TransactionType: entity.TxnStockTransfer,
		TransactionID:   tr.ID,
		MovementType:    entity.MovementIn,
		Quantity:        line.Quantity,
		PerformedBy:     userID,
	}
	if _, err := uc.engine.ApplyMovement(ctx, r, dst, in); err != nil {
		return err
	}

	if line.TrackingType != entity.TrackingSerial {
		return nil
	}
	now := time.Now()
	for _, sid := range line.SerialIDs {
		unit, err := r.Serials.GetByIDForUpdate(ctx, sid)
		if err != nil {
			return err
		}
		if err := uc.checkUnit(unit, sid, product.ID, tr.SourceWarehouseID); err != nil {
			return err
		}
		unit.WarehouseID = tr.DestinationWarehouseID
		unit.StockID = dst.ID
		unit.UpdatedAt = now
		if err := r.Serials.Save(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// Receive acusa recibo del traslado en destino. No mueve stock: el físico ya
// vive en la bodega destino desde la aprobación.
func (uc *UseCase) Receive(ctx context.Context, transferID, userID string) (*entity.StockTransfer, error) {
	var tr *entity.StockTransfer
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		tr, err = r.Transfers.GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
		}
		if tr.Status != entity.TransferStatusInTransit {
			return fmt.Errorf("%w: el traslado %s está en estado %s, no IN_TRANSIT",
				domain.ErrValidation, transferID, tr.Status)
		}
		now := time.Now()
		tr.Status = entity.TransferStatusReceived
		tr.ReceivedBy = userID
		tr.ReceivedAt = &now
		tr.UpdatedAt = now
		return r.Transfers.SaveHeader(ctx, tr)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("transfer_id", transferID).Str("user_id", userID).Msg("traslado recibido")
	return tr, nil
}

// Get devuelve el traslado con sus líneas.
func (uc *UseCase) Get(ctx context.Context, transferID string) (*entity.StockTransfer, error) {
	var tr *entity.StockTransfer
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		tr, err = r.Transfers.GetByID(ctx, transferID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
	}
	return tr, nil
}
