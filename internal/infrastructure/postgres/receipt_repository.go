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

var _ repository.PurchaseReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo recepciones de compra sobre PostgreSQL (encabezado + líneas).
// Los seriales declarados viven como text[] en la línea.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create inserta encabezado y líneas.
func (r *ReceiptRepo) Create(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	query := `
		INSERT INTO purchase_receipts (id, company_id, purchase_order_id, warehouse_id,
			receipt_number, status, received_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		receipt.ID, receipt.CompanyID, receipt.PurchaseOrderID, receipt.WarehouseID,
		receipt.ReceiptNumber, receipt.Status, receipt.ReceivedAt, receipt.CreatedBy,
		receipt.CreatedAt, receipt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: recepción %s", domain.ErrDuplicate, receipt.ReceiptNumber)
		}
		return fmt.Errorf("create receipt: %w", err)
	}
	return r.insertLines(ctx, receipt)
}

func (r *ReceiptRepo) insertLines(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	query := `
		INSERT INTO purchase_receipt_lines (id, receipt_id, purchase_order_line_id, product_id,
			tracking_type, accepted_quantity, rate, gst_percent, taxable_amount, gst_amount,
			total_amount, serial_numbers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for i := range receipt.Lines {
		l := &receipt.Lines[i]
		if _, err := r.q.Exec(ctx, query,
			l.ID, l.ReceiptID, l.PurchaseOrderLineID, l.ProductID, l.TrackingType,
			l.AcceptedQuantity, l.Rate, l.GSTPercent, l.TaxableAmount, l.GSTAmount,
			l.TotalAmount, l.SerialNumbers,
		); err != nil {
			return fmt.Errorf("create receipt line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la recepción con sus líneas, o nil si no existe.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseReceipt, error) {
	query := `
		SELECT id, company_id, purchase_order_id, warehouse_id, receipt_number,
			status, received_at, created_by, created_at, updated_at
		FROM purchase_receipts WHERE id = $1`
	var receipt entity.PurchaseReceipt
	err := r.q.QueryRow(ctx, query, id).Scan(
		&receipt.ID, &receipt.CompanyID, &receipt.PurchaseOrderID, &receipt.WarehouseID,
		&receipt.ReceiptNumber, &receipt.Status, &receipt.ReceivedAt, &receipt.CreatedBy,
		&receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, receipt_id, purchase_order_line_id, product_id, tracking_type,
			accepted_quantity, rate, gst_percent, taxable_amount, gst_amount,
			total_amount, serial_numbers
		FROM purchase_receipt_lines WHERE receipt_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list receipt lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseReceiptLine
		if err := rows.Scan(&l.ID, &l.ReceiptID, &l.PurchaseOrderLineID, &l.ProductID,
			&l.TrackingType, &l.AcceptedQuantity, &l.Rate, &l.GSTPercent, &l.TaxableAmount,
			&l.GSTAmount, &l.TotalAmount, &l.SerialNumbers); err != nil {
			return nil, fmt.Errorf("scan receipt line: %w", err)
		}
		receipt.Lines = append(receipt.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Update reemplaza encabezado y líneas completas (solo válido en DRAFT).
func (r *ReceiptRepo) Update(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	if err := r.SaveHeader(ctx, receipt); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_receipt_lines WHERE receipt_id = $1`, receipt.ID); err != nil {
		return fmt.Errorf("delete receipt lines: %w", err)
	}
	return r.insertLines(ctx, receipt)
}

// SaveHeader persiste solo estado y marcas del encabezado.
func (r *ReceiptRepo) SaveHeader(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	query := `
		UPDATE purchase_receipts SET warehouse_id = $2, receipt_number = $3, status = $4,
			received_at = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		receipt.ID, receipt.WarehouseID, receipt.ReceiptNumber, receipt.Status,
		receipt.ReceivedAt, receipt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save receipt header: %w", err)
	}
	return nil
}
