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

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo ajustes de inventario sobre PostgreSQL (encabezado + líneas).
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create inserta encabezado y líneas.
func (r *AdjustmentRepo) Create(ctx context.Context, adj *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, company_id, warehouse_id, adjustment_number, type,
			status, reason, approved_by, approved_at, posted_by, posted_at, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.CompanyID, adj.WarehouseID, adj.AdjustmentNumber, adj.Type,
		adj.Status, adj.Reason, nullable(adj.ApprovedBy), adj.ApprovedAt,
		nullable(adj.PostedBy), adj.PostedAt, adj.CreatedBy, adj.CreatedAt, adj.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ajuste %s", domain.ErrDuplicate, adj.AdjustmentNumber)
		}
		return fmt.Errorf("create adjustment: %w", err)
	}
	return r.insertLines(ctx, adj)
}

func (r *AdjustmentRepo) insertLines(ctx context.Context, adj *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustment_lines (id, adjustment_id, product_id, direction,
			tracking_type, quantity, serial_numbers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range adj.Lines {
		l := &adj.Lines[i]
		if _, err := r.q.Exec(ctx, query,
			l.ID, l.AdjustmentID, l.ProductID, l.Direction, l.TrackingType,
			l.Quantity, l.SerialNumbers,
		); err != nil {
			return fmt.Errorf("create adjustment line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el ajuste con sus líneas, o nil si no existe.
func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	query := `
		SELECT id, company_id, warehouse_id, adjustment_number, type, status, reason,
			approved_by, approved_at, posted_by, posted_at, created_by, created_at, updated_at
		FROM stock_adjustments WHERE id = $1`
	var adj entity.StockAdjustment
	var approvedBy, postedBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&adj.ID, &adj.CompanyID, &adj.WarehouseID, &adj.AdjustmentNumber, &adj.Type,
		&adj.Status, &adj.Reason, &approvedBy, &adj.ApprovedAt, &postedBy, &adj.PostedAt,
		&adj.CreatedBy, &adj.CreatedAt, &adj.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if approvedBy != nil {
		adj.ApprovedBy = *approvedBy
	}
	if postedBy != nil {
		adj.PostedBy = *postedBy
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, adjustment_id, product_id, direction, tracking_type, quantity, serial_numbers
		FROM stock_adjustment_lines WHERE adjustment_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list adjustment lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.AdjustmentLine
		if err := rows.Scan(&l.ID, &l.AdjustmentID, &l.ProductID, &l.Direction,
			&l.TrackingType, &l.Quantity, &l.SerialNumbers); err != nil {
			return nil, fmt.Errorf("scan adjustment line: %w", err)
		}
		adj.Lines = append(adj.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &adj, nil
}

// Update reemplaza encabezado y líneas completas (solo válido en DRAFT).
func (r *AdjustmentRepo) Update(ctx context.Context, adj *entity.StockAdjustment) error {
	if err := r.SaveHeader(ctx, adj); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_adjustment_lines WHERE adjustment_id = $1`, adj.ID); err != nil {
		return fmt.Errorf("delete adjustment lines: %w", err)
	}
	return r.insertLines(ctx, adj)
}

// SaveHeader persiste estado y marcas del encabezado.
func (r *AdjustmentRepo) SaveHeader(ctx context.Context, adj *entity.StockAdjustment) error {
	query := `
		UPDATE stock_adjustments SET adjustment_number = $2, type = $3, status = $4,
			reason = $5, approved_by = $6, approved_at = $7, posted_by = $8,
			posted_at = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.AdjustmentNumber, adj.Type, adj.Status, adj.Reason,
		nullable(adj.ApprovedBy), adj.ApprovedAt, nullable(adj.PostedBy),
		adj.PostedAt, adj.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save adjustment header: %w", err)
	}
	return nil
}

// nullable convierte "" en NULL para columnas con FK opcional.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
