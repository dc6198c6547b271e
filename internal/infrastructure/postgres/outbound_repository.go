package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.OutboundRepository = (*OutboundRepo)(nil)

// OutboundRepo documentos de salida sobre PostgreSQL (encabezado + líneas).
type OutboundRepo struct {
	q Querier
}

// NewOutboundRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboundRepository(q Querier) *OutboundRepo {
	return &OutboundRepo{q: q}
}

// Create inserta encabezado y líneas.
func (r *OutboundRepo) Create(ctx context.Context, doc *entity.OutboundDocument) error {
	query := `
		INSERT INTO outbound_documents (id, company_id, kind, order_id, warehouse_id,
			document_number, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, doc.Kind, doc.OrderID, doc.WarehouseID,
		doc.DocumentNumber, doc.CreatedBy, doc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: documento %s", domain.ErrDuplicate, doc.DocumentNumber)
		}
		return fmt.Errorf("create outbound document: %w", err)
	}

	lineQuery := `
		INSERT INTO outbound_lines (id, document_id, product_id, tracking_type, quantity, serial_numbers)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if _, err := r.q.Exec(ctx, lineQuery,
			l.ID, l.DocumentID, l.ProductID, l.TrackingType, l.Quantity, l.SerialNumbers,
		); err != nil {
			return fmt.Errorf("create outbound line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el documento con sus líneas, o nil si no existe.
func (r *OutboundRepo) GetByID(ctx context.Context, id string) (*entity.OutboundDocument, error) {
	query := `
		SELECT id, company_id, kind, order_id, warehouse_id, document_number, created_by, created_at
		FROM outbound_documents WHERE id = $1`
	var doc entity.OutboundDocument
	err := r.q.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.CompanyID, &doc.Kind, &doc.OrderID, &doc.WarehouseID,
		&doc.DocumentNumber, &doc.CreatedBy, &doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outbound document: %w", err)
	}
	if err := r.loadLines(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *OutboundRepo) loadLines(ctx context.Context, doc *entity.OutboundDocument) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, product_id, tracking_type, quantity, serial_numbers
		FROM outbound_lines WHERE document_id = $1 ORDER BY id`, doc.ID)
	if err != nil {
		return fmt.Errorf("list outbound lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OutboundLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.ProductID, &l.TrackingType,
			&l.Quantity, &l.SerialNumbers); err != nil {
			return fmt.Errorf("scan outbound line: %w", err)
		}
		doc.Lines = append(doc.Lines, l)
	}
	return rows.Err()
}

// Delete elimina el documento y sus líneas.
func (r *OutboundRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM outbound_lines WHERE document_id = $1`, id); err != nil {
		return fmt.Errorf("delete outbound lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM outbound_documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete outbound document: %w", err)
	}
	return nil
}

// ListByOrder lista los documentos de una orden, el más antiguo primero.
func (r *OutboundRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OutboundDocument, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, kind, order_id, warehouse_id, document_number, created_by, created_at
		FROM outbound_documents WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list outbound documents: %w", err)
	}
	defer rows.Close()
	var docs []*entity.OutboundDocument
	for rows.Next() {
		var doc entity.OutboundDocument
		if err := rows.Scan(&doc.ID, &doc.CompanyID, &doc.Kind, &doc.OrderID, &doc.WarehouseID,
			&doc.DocumentNumber, &doc.CreatedBy, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbound document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := r.loadLines(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// SumShippedByOrder agrega, por producto, lo despachado por todos los
// documentos hermanos de la orden.
func (r *OutboundRepo) SumShippedByOrder(ctx context.Context, orderID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.product_id, COALESCE(SUM(l.quantity), 0)
		FROM outbound_lines l
		JOIN outbound_documents d ON d.id = l.document_id
		WHERE d.order_id = $1
		GROUP BY l.product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("sum shipped by order: %w", err)
	}
	defer rows.Close()
	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var productID string
		var qty decimal.Decimal
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan shipped sum: %w", err)
		}
		sums[productID] = qty
	}
	return sums, rows.Err()
}
