package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados entre bodegas sobre PostgreSQL (encabezado + líneas).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta encabezado y líneas.
func (r *TransferRepo) Create(ctx context.Context, tr *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, company_id, transfer_number, source_warehouse_id,
			destination_warehouse_id, status, approved_by, approved_at, received_by,
			received_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		tr.ID, tr.CompanyID, tr.TransferNumber, tr.SourceWarehouseID,
		tr.DestinationWarehouseID, tr.Status, nullable(tr.ApprovedBy), tr.ApprovedAt,
		nullable(tr.ReceivedBy), tr.ReceivedAt, tr.CreatedBy, tr.CreatedAt, tr.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, tr.TransferNumber)
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	return r.insertLines(ctx, tr)
}

func (r *TransferRepo) insertLines(ctx context.Context, tr *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfer_lines (id, transfer_id, product_id, tracking_type, quantity, serial_ids)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range tr.Lines {
		l := &tr.Lines[i]
		if _, err := r.q.Exec(ctx, query,
			l.ID, l.TransferID, l.ProductID, l.TrackingType, l.Quantity, l.SerialIDs,
		); err != nil {
			return fmt.Errorf("create transfer line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el traslado con sus líneas, o nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	query := `
		SELECT id, company_id, transfer_number, source_warehouse_id, destination_warehouse_id,
			status, approved_by, approved_at, received_by, received_at, created_by,
			created_at, updated_at
		FROM stock_transfers WHERE id = $1`
	var tr entity.StockTransfer
	var approvedBy, receivedBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&tr.ID, &tr.CompanyID, &tr.TransferNumber, &tr.SourceWarehouseID,
		&tr.DestinationWarehouseID, &tr.Status, &approvedBy, &tr.ApprovedAt,
		&receivedBy, &tr.ReceivedAt, &tr.CreatedBy, &tr.CreatedAt, &tr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if approvedBy != nil {
		tr.ApprovedBy = *approvedBy
	}
	if receivedBy != nil {
		tr.ReceivedBy = *receivedBy
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, tracking_type, quantity, serial_ids
		FROM stock_transfer_lines WHERE transfer_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.ProductID, &l.TrackingType,
			&l.Quantity, &l.SerialIDs); err != nil {
			return nil, fmt.Errorf("scan transfer line: %w", err)
		}
		tr.Lines = append(tr.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Update reemplaza encabezado y líneas completas (solo válido en DRAFT).
func (r *TransferRepo) Update(ctx context.Context, tr *entity.StockTransfer) error {
	if err := r.SaveHeader(ctx, tr); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_transfer_lines WHERE transfer_id = $1`, tr.ID); err != nil {
		return fmt.Errorf("delete transfer lines: %w", err)
	}
	return r.insertLines(ctx, tr)
}

// SaveHeader persiste estado, bodegas y marcas del encabezado.
func (r *TransferRepo) SaveHeader(ctx context.Context, tr *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers SET transfer_number = $2, source_warehouse_id = $3,
			destination_warehouse_id = $4, status = $5, approved_by = $6, approved_at = $7,
			received_by = $8, received_at = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		tr.ID, tr.TransferNumber, tr.SourceWarehouseID, tr.DestinationWarehouseID,
		tr.Status, nullable(tr.ApprovedBy), tr.ApprovedAt, nullable(tr.ReceivedBy),
		tr.ReceivedAt, tr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save transfer header: %w", err)
	}
	return nil
}
