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
)

// LedgerParams describe una entrada del libro de movimientos. Rate, GSTPercent
// y Amount solo se llenan para movimientos valorizados; SerialID referencia la
// unidad cuando el movimiento es de una pieza serializada.
type LedgerParams struct {
	TransactionType entity.TransactionType
	TransactionID   string
	MovementType    entity.MovementType
	Quantity        decimal.Decimal
	SerialID        *string
	Rate            *decimal.Decimal
	GSTPercent      *decimal.Decimal
	Amount          *decimal.Decimal
	Reason          string
	PerformedBy     string
}

// CreateLedgerEntry escribe una entrada con snapshot del agregado: lee el
// físico actual como apertura y calcula cierre = apertura ± cantidad. Debe
// llamarse exactamente una vez por movimiento físico (una por serial en líneas
// serializadas, una por línea en cantidades agregadas) y ANTES de mutar el
// agregado, con la fila bloqueada por el caller.
func (e *Engine) CreateLedgerEntry(ctx context.Context, r *repository.Set, s *entity.Stock, p LedgerParams) (*entity.LedgerEntry, error) {
	if !p.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la cantidad de la entrada debe ser positiva", domain.ErrValidation)
	}
	opening := s.QuantityOnHand
	var closing decimal.Decimal
	switch p.MovementType {
	case entity.MovementIn:
		closing = opening.Add(p.Quantity)
	case entity.MovementOut:
		closing = opening.Sub(p.Quantity)
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q desconocido", domain.ErrValidation, p.MovementType)
	}

	entry := &entity.LedgerEntry{
		ID:              uuid.New().String(),
		ProductID:       s.ProductID,
		WarehouseID:     s.WarehouseID,
		StockID:         s.ID,
		TransactionType: p.TransactionType,
		TransactionID:   p.TransactionID,
		MovementType:    p.MovementType,
		Quantity:        p.Quantity,
		SerialID:        p.SerialID,
		OpeningQuantity: opening,
		ClosingQuantity: closing,
		Rate:            p.Rate,
		GSTPercent:      p.GSTPercent,
		Amount:          p.Amount,
		Reason:          p.Reason,
		PerformedBy:     p.PerformedBy,
		CreatedAt:       time.Now(),
	}
	if err := r.Ledger.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyMovement compone entrada de libro + mutación del agregado como una sola
// unidad y verifica el invariante: tras mutar, el físico debe coincidir con el
// cierre de la entrada recién escrita. Un desfase indica corrupción interna y
// se reporta como ErrInvariant (nunca observable en una implementación sana).
func (e *Engine) ApplyMovement(ctx context.Context, r *repository.Set, s *entity.Stock, p LedgerParams) (*entity.LedgerEntry, error) {
	entry, err := e.CreateLedgerEntry(ctx, r, s, p)
	if err != nil {
		return nil, err
	}
	if err := e.UpdateStockQuantities(ctx, r, s, p.Quantity, p.PerformedBy, p.MovementType == entity.MovementIn); err != nil {
		return nil, err
	}
	if !s.QuantityOnHand.Equal(entry.ClosingQuantity) {
		return nil, fmt.Errorf("%w: cierre %s, físico %s", domain.ErrInvariant,
			entry.ClosingQuantity.String(), s.QuantityOnHand.String())
	}
	return entry, nil
}
