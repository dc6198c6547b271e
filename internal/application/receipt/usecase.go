package receipt

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

// UseCase orquesta la recepción de compra: DRAFT (sin efecto sobre stock) y
// aprobación a RECEIVED (terminal), que mueve stock, crea seriales, actualiza
// contadores de la orden de compra y escribe el libro — todo en una
// transacción, todo-o-nada.
type UseCase struct {
	tx     stock.TxRunner
	engine *stock.Engine
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx stock.TxRunner, engine *stock.Engine, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, engine: engine, log: log}
}

// Create crea la recepción en DRAFT contra una orden de compra APPROVED o
// PARTIAL_RECEIVED. Valida techos por línea (aceptado <= pedido - recibido),
// normaliza el tipo de seguimiento por producto y calcula los montos; no toca
// stock todavía.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateReceiptRequest) (*entity.PurchaseReceipt, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: la recepción no tiene líneas", domain.ErrValidation)
	}

	var receipt *entity.PurchaseReceipt
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		po, err := r.PurchaseOrders.GetByID(ctx, in.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, in.PurchaseOrderID)
		}
		if po.Status != entity.POStatusApproved && po.Status != entity.POStatusPartialReceived {
			return fmt.Errorf("%w: la orden de compra %s está en estado %s",
				domain.ErrValidation, po.ID, po.Status)
		}
		wh, err := r.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}

		now := time.Now()
		receipt = &entity.PurchaseReceipt{
			ID:              uuid.New().String(),
			CompanyID:       companyID,
			PurchaseOrderID: po.ID,
			WarehouseID:     in.WarehouseID,
			ReceiptNumber:   in.ReceiptNumber,
			Status:          entity.ReceiptStatusDraft,
			CreatedBy:       userID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		for _, lineIn := range in.Lines {
			line, err := uc.buildLine(ctx, r, po, receipt.ID, lineIn)
			if err != nil {
				return err
			}
			receipt.Lines = append(receipt.Lines, *line)
		}
		return r.Receipts.Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("receipt_id", receipt.ID).
		Str("purchase_order_id", in.PurchaseOrderID).
		Int("lines", len(receipt.Lines)).
		Msg("recepción creada en borrador")
	return receipt, nil
}

// buildLine valida una línea contra su línea de orden de compra y calcula
// montos. El seguimiento se normaliza por producto: SERIAL gana sobre
// banderas inconsistentes.
func (uc *UseCase) buildLine(ctx context.Context, r *repository.Set, po *entity.PurchaseOrder, receiptID string, in dto.ReceiptLineRequest) (*entity.PurchaseReceiptLine, error) {
	if err := domstock.ValidateQuantity(in.AcceptedQuantity); err != nil {
		return nil, err
	}
	poLine := po.LineByID(in.PurchaseOrderLineID)
	if poLine == nil {
		return nil, fmt.Errorf("%w: línea %s de la orden de compra %s",
			domain.ErrNotFound, in.PurchaseOrderLineID, po.ID)
	}
	if in.AcceptedQuantity.GreaterThan(poLine.PendingQuantity()) {
		return nil, fmt.Errorf("%w: aceptado %s excede lo pendiente %s de la línea %s",
			domain.ErrValidation, in.AcceptedQuantity.String(), poLine.PendingQuantity().String(), poLine.ID)
	}
	product, err := r.Products.GetByID(ctx, poLine.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, poLine.ProductID)
	}

	tracking := product.EffectiveTracking()
	if tracking == entity.TrackingSerial {
		if err := domstock.ValidateSerialCount(in.AcceptedQuantity, len(in.SerialNumbers)); err != nil {
			return nil, err
		}
	}

	taxable, gst, total := domstock.LineAmounts(poLine.Rate, in.AcceptedQuantity, product.GSTPercent)
	return &entity.PurchaseReceiptLine{
		ID:                  uuid.New().String(),
		ReceiptID:           receiptID,
		PurchaseOrderLineID: poLine.ID,
		ProductID:           product.ID,
		TrackingType:        tracking,
		AcceptedQuantity:    in.AcceptedQuantity,
		Rate:                poLine.Rate,
		GSTPercent:          product.GSTPercent,
		TaxableAmount:       taxable,
		GSTAmount:           gst,
		TotalAmount:         total,
		SerialNumbers:       in.SerialNumbers,
	}, nil
}

// Approve pasa la recepción DRAFT -> RECEIVED (terminal): incrementa los
// contadores recibidos de la orden de compra, recalcula su estado
// (CLOSED/PARTIAL_RECEIVED), mueve stock IN por línea, crea una unidad por
// serial declarado (rechazando colisiones en el ámbito del tipo de producto)
// y escribe una entrada de libro por serial o por línea agregada.
func (uc *UseCase) Approve(ctx context.Context, receiptID, userID string) (*entity.PurchaseReceipt, error) {
	var receipt *entity.PurchaseReceipt
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		receipt, err = r.Receipts.GetByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return fmt.Errorf("%w: recepción %s", domain.ErrNotFound, receiptID)
		}
		if receipt.Status != entity.ReceiptStatusDraft {
			return fmt.Errorf("%w: la recepción %s está en estado %s, no DRAFT",
				domain.ErrValidation, receiptID, receipt.Status)
		}

		po, err := r.PurchaseOrders.GetByIDForUpdate(ctx, receipt.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, receipt.PurchaseOrderID)
		}
		if po.Status != entity.POStatusApproved && po.Status != entity.POStatusPartialReceived {
			return fmt.Errorf("%w: la orden de compra %s está en estado %s",
				domain.ErrValidation, po.ID, po.Status)
		}

		// Contadores recibidos de la orden, re-validando el techo bajo bloqueo.
		for i := range receipt.Lines {
			line := &receipt.Lines[i]
			poLine := po.LineByID(line.PurchaseOrderLineID)
			if poLine == nil {
				return fmt.Errorf("%w: línea %s de la orden de compra %s",
					domain.ErrNotFound, line.PurchaseOrderLineID, po.ID)
			}
			if line.AcceptedQuantity.GreaterThan(poLine.PendingQuantity()) {
				return fmt.Errorf("%w: aceptado %s excede lo pendiente %s de la línea %s",
					domain.ErrValidation, line.AcceptedQuantity.String(), poLine.PendingQuantity().String(), poLine.ID)
			}
			poLine.ReceivedQuantity = poLine.ReceivedQuantity.Add(line.AcceptedQuantity)
			if err := r.PurchaseOrders.SaveLine(ctx, poLine); err != nil {
				return err
			}
		}
		newStatus := entity.POStatusPartialReceived
		if po.FullyReceived() {
			newStatus = entity.POStatusClosed
		}
		if err := r.PurchaseOrders.UpdateStatus(ctx, po.ID, newStatus); err != nil {
			return err
		}

		// Movimientos de stock, seriales y libro por línea.
		for i := range receipt.Lines {
			if err := uc.applyLine(ctx, r, receipt, &receipt.Lines[i], userID); err != nil {
				return err
			}
		}

		now := time.Now()
		receipt.Status = entity.ReceiptStatusReceived
		receipt.ReceivedAt = &now
		receipt.UpdatedAt = now
		return r.Receipts.SaveHeader(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("receipt_id", receiptID).
		Str("user_id", userID).
		Msg("recepción aprobada y stock ingresado")
	return receipt, nil
}

// applyLine mueve stock IN por la línea: una unidad y una entrada de libro por
// serial en líneas serializadas, una sola entrada agregada en las demás.
func (uc *UseCase) applyLine(ctx context.Context, r *repository.Set, receipt *entity.PurchaseReceipt, line *entity.PurchaseReceiptLine, userID string) error {
	product, err := r.Products.GetByID(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
	}
	s, err := uc.engine.GetOrCreateStock(ctx, r, product, receipt.WarehouseID)
	if err != nil {
		return err
	}

	if line.TrackingType == entity.TrackingSerial {
		_, _, unitTotal := domstock.LineAmounts(line.Rate, decimal.NewFromInt(1), line.GSTPercent)
		for _, sn := range line.SerialNumbers {
			unit, err := uc.engine.RegisterSerial(ctx, r, sn, product, s)
			if err != nil {
				return err
			}
			p := stock.LedgerParams{
				TransactionType: entity.TxnPurchaseReceipt,
				TransactionID:   receipt.ID,
				MovementType:    entity.MovementIn,
				Quantity:        decimal.NewFromInt(1),
				SerialID:        &unit.ID,
				Rate:            &line.Rate,
				GSTPercent:      &line.GSTPercent,
				Amount:          &unitTotal,
				PerformedBy:     userID,
			}
			if _, err := uc.engine.ApplyMovement(ctx, r, s, p); err != nil {
				return err
			}
		}
		return nil
	}

	p := stock.LedgerParams{
		TransactionType: entity.TxnPurchaseReceipt,
		TransactionID:   receipt.ID,
		MovementType:    entity.MovementIn,
		Quantity:        line.AcceptedQuantity,
		Rate:            &line.Rate,
		GSTPercent:      &line.GSTPercent,
		Amount:          &line.TotalAmount,
		PerformedBy:     userID,
	}
	_, err = uc.engine.ApplyMovement(ctx, r, s, p)
	return err
}

// Get devuelve la recepción con sus líneas.
func (uc *UseCase) Get(ctx context.Context, receiptID string) (*entity.PurchaseReceipt, error) {
	var receipt *entity.PurchaseReceipt
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		receipt, err = r.Receipts.GetByID(ctx, receiptID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: recepción %s", domain.ErrNotFound, receiptID)
	}
	return receipt, nil
}
