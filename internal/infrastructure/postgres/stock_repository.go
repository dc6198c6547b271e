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

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, product_id, warehouse_id, quantity_on_hand, quantity_reserved,
		quantity_available, tracking_type, min_stock_quantity, last_inward_at,
		last_outward_at, last_updated_by, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el agregado de (producto, bodega), o nil si aún no existe.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + `
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2`
	return r.scanOne(ctx, query, productID, warehouseID)
}

// GetForUpdate obtiene el agregado y bloquea la fila (SELECT FOR UPDATE), o nil.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + `
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, query, productID, warehouseID)
}

func (r *StockRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.ProductID, &s.WarehouseID, &s.QuantityOnHand, &s.QuantityReserved,
		&s.QuantityAvailable, &s.TrackingType, &s.MinStockQuantity, &s.LastInwardAt,
		&s.LastOutwardAt, &s.LastUpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Create inserta el agregado nuevo. La constraint única (product_id, warehouse_id)
// convierte la carrera de inserción en domain.ErrDuplicate.
func (r *StockRepo) Create(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stocks (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.ProductID, s.WarehouseID, s.QuantityOnHand, s.QuantityReserved,
		s.QuantityAvailable, s.TrackingType, s.MinStockQuantity, s.LastInwardAt,
		s.LastOutwardAt, s.LastUpdatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stock de %s en %s", domain.ErrDuplicate, s.ProductID, s.WarehouseID)
		}
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

// Save persiste cantidades y marcas del agregado ya bloqueado.
func (r *StockRepo) Save(ctx context.Context, s *entity.Stock) error {
	query := `
		UPDATE stocks SET quantity_on_hand = $2, quantity_reserved = $3,
			quantity_available = $4, min_stock_quantity = $5, last_inward_at = $6,
			last_outward_at = $7, last_updated_by = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.QuantityOnHand, s.QuantityReserved, s.QuantityAvailable,
		s.MinStockQuantity, s.LastInwardAt, s.LastOutwardAt, s.LastUpdatedBy, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	return nil
}

// ListByWarehouse lista los agregados de una bodega, paginados.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + `
		FROM stocks WHERE warehouse_id = $1
		ORDER BY product_id LIMIT $2 OFFSET $3`
	return r.scanMany(ctx, query, warehouseID, limit, offset)
}

// ListBelowMinimum lista los agregados en o por debajo de su stock mínimo.
func (r *StockRepo) ListBelowMinimum(ctx context.Context, warehouseID string) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + `
		FROM stocks WHERE warehouse_id = $1
		AND min_stock_quantity > 0 AND quantity_on_hand <= min_stock_quantity
		ORDER BY product_id`
	return r.scanMany(ctx, query, warehouseID)
}

func (r *StockRepo) scanMany(ctx context.Context, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(
			&s.ID, &s.ProductID, &s.WarehouseID, &s.QuantityOnHand, &s.QuantityReserved,
			&s.QuantityAvailable, &s.TrackingType, &s.MinStockQuantity, &s.LastInwardAt,
			&s.LastOutwardAt, &s.LastUpdatedBy, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
