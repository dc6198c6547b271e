package outbound

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

// UseCase orquesta los documentos de salida (remisión y despacho B2B) con la
// misma mecánica parametrizada por Policy. No hay borradores: crear el
// documento ejecuta el movimiento completo y eliminarlo ejecuta el reverso
// completo, cada uno en una sola transacción.
type UseCase struct {
	policy Policy
	tx     stock.TxRunner
	engine *stock.Engine
	log    *logger.Logger
}

// NewUseCase construye el flujo de salida para una política.
func NewUseCase(policy Policy, tx stock.TxRunner, engine *stock.Engine, log *logger.Logger) *UseCase {
	return &UseCase{policy: policy, tx: tx, engine: engine, log: log}
}

// Create despacha un documento contra una orden confirmada: valida autoría de
// bodega, techos por producto (planificado menos ya despachado por documentos
// hermanos), disponibilidad de seriales, consume retenciones, mueve stock OUT
// y escribe el libro; si la política lo indica, recalcula el snapshot de
// entrega de la orden.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateOutboundRequest) (*entity.OutboundDocument, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el documento no tiene líneas", domain.ErrValidation)
	}

	var doc *entity.OutboundDocument
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		order, err := uc.loadOrder(ctx, r, in.OrderID)
		if err != nil {
			return err
		}
		warehouseID := order.PlannedWarehouseID
		if in.WarehouseID != "" && in.WarehouseID != warehouseID {
			return fmt.Errorf("%w: la orden %s está planificada para la bodega %s",
				domain.ErrValidation, order.ID, warehouseID)
		}
		ok, err := r.Warehouses.IsManager(ctx, warehouseID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: el usuario %s no es encargado de la bodega %s",
				domain.ErrUnauthorizedWarehouse, userID, warehouseID)
		}

		shipped, err := r.Outbounds.SumShippedByOrder(ctx, order.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		doc = &entity.OutboundDocument{
			ID:             uuid.New().String(),
			CompanyID:      companyID,
			Kind:           uc.policy.Kind,
			OrderID:        order.ID,
			WarehouseID:    warehouseID,
			DocumentNumber: in.DocumentNumber,
			CreatedBy:      userID,
			CreatedAt:      now,
		}

		for _, lineIn := range in.Lines {
			if err := domstock.ValidateQuantity(lineIn.Quantity); err != nil {
				return err
			}
			planned, ok := order.PlannedFor(lineIn.ProductID)
			if !ok {
				return fmt.Errorf("%w: el producto %s no está planificado en la orden %s",
					domain.ErrValidation, lineIn.ProductID, order.ID)
			}
			already := shipped[lineIn.ProductID]
			if already.Add(lineIn.Quantity).GreaterThan(planned) {
				return fmt.Errorf("%w: producto %s: planificado %s, ya despachado %s, se intentó %s",
					domain.ErrValidation, lineIn.ProductID, planned.String(), already.String(), lineIn.Quantity.String())
			}
			shipped[lineIn.ProductID] = already.Add(lineIn.Quantity)

			product, err := r.Products.GetByID(ctx, lineIn.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, lineIn.ProductID)
			}
			tracking := product.EffectiveTracking()
			if tracking == entity.TrackingSerial {
				if err := domstock.ValidateSerialCount(lineIn.Quantity, len(lineIn.SerialNumbers)); err != nil {
					return err
				}
			}

			doc.Lines = append(doc.Lines, entity.OutboundLine{
				ID:            uuid.New().String(),
				DocumentID:    doc.ID,
				ProductID:     product.ID,
				TrackingType:  tracking,
				Quantity:      lineIn.Quantity,
				SerialNumbers: lineIn.SerialNumbers,
			})
			if err := uc.shipLine(ctx, r, doc, order, product, &doc.Lines[len(doc.Lines)-1]); err != nil {
				return err
			}
		}

		if err := r.Outbounds.Create(ctx, doc); err != nil {
			return err
		}
		if uc.policy.TracksDelivery {
			if err := uc.recomputeDelivery(ctx, r, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("kind", string(doc.Kind)).
		Str("order_id", doc.OrderID).
		Str("warehouse_id", doc.WarehouseID).
		Msg("documento de salida creado")
	return doc, nil
}

// shipLine emite una línea: consume la retención de la orden, y mueve stock
// OUT unidad por unidad (seriales) o en agregado, con su entrada de libro.
func (uc *UseCase) shipLine(ctx context.Context, r *repository.Set, doc *entity.OutboundDocument, order *entity.SalesOrder, product *entity.Product, line *entity.OutboundLine) error {
	s, err := uc.engine.GetOrCreateStock(ctx, r, product, doc.WarehouseID)
	if err != nil {
		return err
	}
	if _, err := uc.engine.ConsumeReservation(ctx, r, s, order.ID, line.Quantity, doc.CreatedBy); err != nil {
		return err
	}

	if line.TrackingType == entity.TrackingSerial {
		for _, sn := range line.SerialNumbers {
			unit, err := uc.engine.ValidateSerialAvailable(ctx, r, sn, product.ID, doc.WarehouseID)
			if err != nil {
				return err
			}
			if err := uc.engine.IssueSerial(ctx, r, unit, doc.ID); err != nil {
				return err
			}
			p := stock.LedgerParams{
				TransactionType: uc.policy.TxnType,
				TransactionID:   doc.ID,
				MovementType:    entity.MovementOut,
				Quantity:        decimal.NewFromInt(1),
				SerialID:        &unit.ID,
				PerformedBy:     doc.CreatedBy,
			}
			if _, err := uc.engine.ApplyMovement(ctx, r, s, p); err != nil {
				return err
			}
		}
		return nil
	}

	p := stock.LedgerParams{
		TransactionType: uc.policy.TxnType,
		TransactionID:   doc.ID,
		MovementType:    entity.MovementOut,
		Quantity:        line.Quantity,
		PerformedBy:     doc.CreatedBy,
	}
	_, err = uc.engine.ApplyMovement(ctx, r, s, p)
	return err
}

// Delete revierte el documento por completo: stock IN por cada serial o línea
// con el tipo de reverso, seriales de vuelta a AVAILABLE cuando aún son
// resolubles, y el snapshot de entrega recalculado desde los hermanos
// sobrevivientes. El reverso no recrea retenciones.
func (uc *UseCase) Delete(ctx context.Context, userID, documentID string) error {
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		doc, err := r.Outbounds.GetByID(ctx, documentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("%w: documento de salida %s", domain.ErrNotFound, documentID)
		}
		if doc.Kind != uc.policy.Kind {
			return fmt.Errorf("%w: el documento %s es %s", domain.ErrValidation, documentID, doc.Kind)
		}

		for i := range doc.Lines {
			if err := uc.reverseLine(ctx, r, doc, &doc.Lines[i], userID); err != nil {
				return err
			}
		}
		if err := r.Outbounds.Delete(ctx, doc.ID); err != nil {
			return err
		}

		if uc.policy.TracksDelivery {
			order, err := uc.loadOrderAnyStatus(ctx, r, doc.OrderID)
			if err != nil {
				return err
			}
			if err := uc.recomputeDelivery(ctx, r, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("document_id", documentID).
		Str("user_id", userID).
		Msg("documento de salida revertido y eliminado")
	return nil
}

// reverseLine devuelve el stock de una línea. Un serial sigue siendo resoluble
// si existe, está ISSUED y fue emitido por este documento; si otra cosa pasó
// con él (traslado posterior, baja), el físico vuelve igual pero la unidad no
// se toca y la entrada de reverso queda sin serial.
func (uc *UseCase) reverseLine(ctx context.Context, r *repository.Set, doc *entity.OutboundDocument, line *entity.OutboundLine, userID string) error {
	product, err := r.Products.GetByID(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
	}
	s, err := uc.engine.GetOrCreateStock(ctx, r, product, doc.WarehouseID)
	if err != nil {
		return err
	}

	if line.TrackingType == entity.TrackingSerial {
		for _, sn := range line.SerialNumbers {
			unit, err := r.Serials.GetBySerialForUpdate(ctx, sn, product.ID, doc.WarehouseID)
			if err != nil {
				return err
			}
			var serialID *string
			if unit != nil && unit.Status == entity.SerialIssued && unit.OutboundRef == doc.ID {
				if err := uc.engine.RestoreSerial(ctx, r, unit); err != nil {
					return err
				}
				serialID = &unit.ID
			}
			p := stock.LedgerParams{
				TransactionType: uc.policy.ReversalTxnType,
				TransactionID:   doc.ID,
				MovementType:    entity.MovementIn,
				Quantity:        decimal.NewFromInt(1),
				SerialID:        serialID,
				PerformedBy:     userID,
			}
			if _, err := uc.engine.ApplyMovement(ctx, r, s, p); err != nil {
				return err
			}
		}
		return nil
	}

	p := stock.LedgerParams{
		TransactionType: uc.policy.ReversalTxnType,
		TransactionID:   doc.ID,
		MovementType:    entity.MovementIn,
		Quantity:        line.Quantity,
		PerformedBy:     userID,
	}
	_, err = uc.engine.ApplyMovement(ctx, r, s, p)
	return err
}

// recomputeDelivery deriva el snapshot de entrega de la orden desde el
// historial de documentos sobreviviente: despachado/pendiente por línea y el
// estado agregado PENDING/PARTIAL/COMPLETE.
func (uc *UseCase) recomputeDelivery(ctx context.Context, r *repository.Set, order *entity.SalesOrder) error {
	shipped, err := r.Outbounds.SumShippedByOrder(ctx, order.ID)
	if err != nil {
		return err
	}

	anyShipped := false
	allComplete := true
	for i := range order.Lines {
		line := &order.Lines[i]
		line.ShippedQuantity = shipped[line.ProductID]
		line.PendingQuantity = line.PlannedQuantity.Sub(line.ShippedQuantity)
		if line.ShippedQuantity.GreaterThan(decimal.Zero) {
			anyShipped = true
		}
		if line.PendingQuantity.GreaterThan(decimal.Zero) {
			allComplete = false
		}
		if err := r.Orders.SaveLine(ctx, line); err != nil {
			return err
		}
	}

	status := entity.DeliveryPending
	switch {
	case allComplete && anyShipped:
		status = entity.DeliveryComplete
	case anyShipped:
		status = entity.DeliveryPartial
	}
	return r.Orders.UpdateDeliveryStatus(ctx, order.ID, status)
}

// Get devuelve el documento con sus líneas.
func (uc *UseCase) Get(ctx context.Context, documentID string) (*entity.OutboundDocument, error) {
	var doc *entity.OutboundDocument
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		var err error
		doc, err = r.Outbounds.GetByID(ctx, documentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Kind != uc.policy.Kind {
		return nil, fmt.Errorf("%w: documento de salida %s", domain.ErrNotFound, documentID)
	}
	return doc, nil
}

// ListByOrder devuelve los documentos de la orden para esta clase.
func (uc *UseCase) ListByOrder(ctx context.Context, orderID string) ([]*entity.OutboundDocument, error) {
	var docs []*entity.OutboundDocument
	err := uc.tx.Run(ctx, func(r *repository.Set) error {
		all, err := r.Outbounds.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for _, d := range all {
			if d.Kind == uc.policy.Kind {
				docs = append(docs, d)
			}
		}
		return nil
	})
	return docs, err
}

// loadOrder carga la orden y exige clase compatible y estado CONFIRMED.
func (uc *UseCase) loadOrder(ctx context.Context, r *repository.Set, orderID string) (*entity.SalesOrder, error) {
	order, err := uc.loadOrderAnyStatus(ctx, r, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: la orden %s está en estado %s, no CONFIRMED",
			domain.ErrValidation, order.ID, order.Status)
	}
	return order, nil
}

func (uc *UseCase) loadOrderAnyStatus(ctx context.Context, r *repository.Set, orderID string) (*entity.SalesOrder, error) {
	order, err := r.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	if order.Kind != uc.policy.OrderKind {
		return nil, fmt.Errorf("%w: la orden %s es de clase %s, este flujo exige %s",
			domain.ErrValidation, order.ID, order.Kind, uc.policy.OrderKind)
	}
	return order, nil
}
