package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// newSet arma el Set de repositorios sobre los datos. El caller (TxRunner)
// sostiene el mutex durante toda la transacción, así que los repos no bloquean.
func newSet(d *data) *repository.Set {
	return &repository.Set{
		Stocks:         &stockRepo{d},
		Serials:        &serialRepo{d},
		Ledger:         &ledgerRepo{d},
		Products:       &productRepo{d},
		Warehouses:     &warehouseRepo{d},
		PurchaseOrders: &purchaseOrderRepo{d},
		Receipts:       &receiptRepo{d},
		Orders:         &orderRepo{d},
		Outbounds:      &outboundRepo{d},
		Adjustments:    &adjustmentRepo{d},
		Transfers:      &transferRepo{d},
		Reservations:   &reservationRepo{d},
	}
}

// ── stocks ──────────────────────────────────────────────────────────────────

type stockRepo struct{ d *data }

func (r *stockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	id, ok := r.d.stockIDByKey[stockKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	s := r.d.stocks[id]
	return &s, nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	// El mutex del TxRunner ya serializa: equivale al FOR UPDATE.
	return r.Get(ctx, productID, warehouseID)
}

func (r *stockRepo) Create(_ context.Context, s *entity.Stock) error {
	key := stockKey(s.ProductID, s.WarehouseID)
	if _, ok := r.d.stockIDByKey[key]; ok {
		return fmt.Errorf("%w: stock de %s en %s", domain.ErrDuplicate, s.ProductID, s.WarehouseID)
	}
	r.d.stockIDByKey[key] = s.ID
	r.d.stocks[s.ID] = *s
	return nil
}

func (r *stockRepo) Save(_ context.Context, s *entity.Stock) error {
	if _, ok := r.d.stocks[s.ID]; !ok {
		return fmt.Errorf("%w: stock %s", domain.ErrNotFound, s.ID)
	}
	r.d.stocks[s.ID] = *s
	return nil
}

func (r *stockRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	var list []*entity.Stock
	for _, s := range r.d.stocks {
		if s.WarehouseID == warehouseID {
			s := s
			list = append(list, &s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return paginate(list, limit, offset), nil
}

func (r *stockRepo) ListBelowMinimum(_ context.Context, warehouseID string) ([]*entity.Stock, error) {
	var list []*entity.Stock
	for _, s := range r.d.stocks {
		if s.WarehouseID == warehouseID && s.MinStockQuantity.GreaterThan(decimal.Zero) &&
			!s.QuantityOnHand.GreaterThan(s.MinStockQuantity) {
			s := s
			list = append(list, &s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── seriales ────────────────────────────────────────────────────────────────

type serialRepo struct{ d *data }

func (r *serialRepo) GetBySerial(_ context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	for _, u := range r.d.serials {
		if u.SerialNumber == serialNumber && u.ProductID == productID && u.WarehouseID == warehouseID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *serialRepo) GetBySerialForUpdate(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	return r.GetBySerial(ctx, serialNumber, productID, warehouseID)
}

func (r *serialRepo) GetByID(_ context.Context, id string) (*entity.SerialUnit, error) {
	u, ok := r.d.serials[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *serialRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	return r.GetByID(ctx, id)
}

func (r *serialRepo) ExistsInProductType(_ context.Context, serialNumber, productTypeID string) (bool, error) {
	for _, u := range r.d.serials {
		if u.SerialNumber == serialNumber && u.ProductTypeID == productTypeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *serialRepo) Create(ctx context.Context, u *entity.SerialUnit) error {
	exists, _ := r.ExistsInProductType(ctx, u.SerialNumber, u.ProductTypeID)
	if exists {
		return fmt.Errorf("%w: serial %s", domain.ErrSerialAlreadyExists, u.SerialNumber)
	}
	r.d.serials[u.ID] = *u
	return nil
}

func (r *serialRepo) Save(_ context.Context, u *entity.SerialUnit) error {
	if _, ok := r.d.serials[u.ID]; !ok {
		return fmt.Errorf("%w: serial %s", domain.ErrNotFound, u.ID)
	}
	r.d.serials[u.ID] = *u
	return nil
}

func (r *serialRepo) Delete(_ context.Context, id string) error {
	delete(r.d.serials, id)
	return nil
}

// ── libro ───────────────────────────────────────────────────────────────────

type ledgerRepo struct{ d *data }

func (r *ledgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	r.d.ledger = append(r.d.ledger, *e)
	return nil
}

func (r *ledgerRepo) ListByStock(_ context.Context, productID, warehouseID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	// El slice ya está en orden de escritura; se recorre al revés (reciente primero).
	for i := len(r.d.ledger) - 1; i >= 0; i-- {
		e := r.d.ledger[i]
		if e.ProductID == productID && e.WarehouseID == warehouseID {
			list = append(list, &e)
		}
	}
	return paginate(list, limit, offset), nil
}

func (r *ledgerRepo) ListByTransaction(_ context.Context, txnType entity.TransactionType, txnID string) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for i := range r.d.ledger {
		e := r.d.ledger[i]
		if e.TransactionType == txnType && e.TransactionID == txnID {
			list = append(list, &e)
		}
	}
	return list, nil
}

// ── colaboradores de solo lectura ───────────────────────────────────────────

type productRepo struct{ d *data }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.d.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type warehouseRepo struct{ d *data }

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.d.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) IsManager(_ context.Context, warehouseID, userID string) (bool, error) {
	return r.d.managers[warehouseID][userID], nil
}

// ── órdenes de compra ───────────────────────────────────────────────────────

type purchaseOrderRepo struct{ d *data }

func (r *purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	po, ok := r.d.purchaseOrders[id]
	if !ok {
		return nil, nil
	}
	po = clonePurchaseOrder(po)
	return &po, nil
}

func (r *purchaseOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseOrderRepo) SaveLine(_ context.Context, line *entity.PurchaseOrderLine) error {
	po, ok := r.d.purchaseOrders[line.PurchaseOrderID]
	if !ok {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, line.PurchaseOrderID)
	}
	po = clonePurchaseOrder(po)
	for i := range po.Lines {
		if po.Lines[i].ID == line.ID {
			po.Lines[i] = *line
			r.d.purchaseOrders[po.ID] = po
			return nil
		}
	}
	return fmt.Errorf("%w: línea %s", domain.ErrNotFound, line.ID)
}

func (r *purchaseOrderRepo) UpdateStatus(_ context.Context, id string, status entity.PurchaseOrderStatus) error {
	po, ok := r.d.purchaseOrders[id]
	if !ok {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, id)
	}
	po.Status = status
	r.d.purchaseOrders[id] = po
	return nil
}

// ── recepciones ─────────────────────────────────────────────────────────────

type receiptRepo struct{ d *data }

func (r *receiptRepo) Create(_ context.Context, receipt *entity.PurchaseReceipt) error {
	if _, ok := r.d.receipts[receipt.ID]; ok {
		return fmt.Errorf("%w: recepción %s", domain.ErrDuplicate, receipt.ID)
	}
	r.d.receipts[receipt.ID] = cloneReceipt(*receipt)
	return nil
}

func (r *receiptRepo) GetByID(_ context.Context, id string) (*entity.PurchaseReceipt, error) {
	receipt, ok := r.d.receipts[id]
	if !ok {
		return nil, nil
	}
	receipt = cloneReceipt(receipt)
	return &receipt, nil
}

func (r *receiptRepo) Update(_ context.Context, receipt *entity.PurchaseReceipt) error {
	if _, ok := r.d.receipts[receipt.ID]; !ok {
		return fmt.Errorf("%w: recepción %s", domain.ErrNotFound, receipt.ID)
	}
	r.d.receipts[receipt.ID] = cloneReceipt(*receipt)
	return nil
}

func (r *receiptRepo) SaveHeader(_ context.Context, receipt *entity.PurchaseReceipt) error {
	stored, ok := r.d.receipts[receipt.ID]
	if !ok {
		return fmt.Errorf("%w: recepción %s", domain.ErrNotFound, receipt.ID)
	}
	stored.WarehouseID = receipt.WarehouseID
	stored.ReceiptNumber = receipt.ReceiptNumber
	stored.Status = receipt.Status
	stored.ReceivedAt = receipt.ReceivedAt
	stored.UpdatedAt = receipt.UpdatedAt
	r.d.receipts[receipt.ID] = stored
	return nil
}

// ── órdenes ─────────────────────────────────────────────────────────────────

type orderRepo struct{ d *data }

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	o, ok := r.d.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *orderRepo) SaveLine(_ context.Context, line *entity.SalesOrderLine) error {
	o, ok := r.d.orders[line.OrderID]
	if !ok {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, line.OrderID)
	}
	o = cloneOrder(o)
	for i := range o.Lines {
		if o.Lines[i].ID == line.ID {
			o.Lines[i] = *line
			r.d.orders[o.ID] = o
			return nil
		}
	}
	return fmt.Errorf("%w: línea %s", domain.ErrNotFound, line.ID)
}

func (r *orderRepo) UpdateDeliveryStatus(_ context.Context, id string, status entity.DeliveryStatus) error {
	o, ok := r.d.orders[id]
	if !ok {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	o.DeliveryStatus = status
	r.d.orders[id] = o
	return nil
}

// ── documentos de salida ────────────────────────────────────────────────────

type outboundRepo struct{ d *data }

func (r *outboundRepo) Create(_ context.Context, doc *entity.OutboundDocument) error {
	if _, ok := r.d.outbounds[doc.ID]; ok {
		return fmt.Errorf("%w: documento %s", domain.ErrDuplicate, doc.ID)
	}
	r.d.outbounds[doc.ID] = cloneOutbound(*doc)
	return nil
}

func (r *outboundRepo) GetByID(_ context.Context, id string) (*entity.OutboundDocument, error) {
	doc, ok := r.d.outbounds[id]
	if !ok {
		return nil, nil
	}
	doc = cloneOutbound(doc)
	return &doc, nil
}

func (r *outboundRepo) Delete(_ context.Context, id string) error {
	delete(r.d.outbounds, id)
	return nil
}

func (r *outboundRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OutboundDocument, error) {
	var docs []*entity.OutboundDocument
	for _, doc := range r.d.outbounds {
		if doc.OrderID == orderID {
			doc := cloneOutbound(doc)
			docs = append(docs, &doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

func (r *outboundRepo) SumShippedByOrder(ctx context.Context, orderID string) (map[string]decimal.Decimal, error) {
	docs, err := r.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal)
	for _, doc := range docs {
		for i := range doc.Lines {
			l := &doc.Lines[i]
			sums[l.ProductID] = sums[l.ProductID].Add(l.Quantity)
		}
	}
	return sums, nil
}

// ── ajustes ─────────────────────────────────────────────────────────────────

type adjustmentRepo struct{ d *data }

func (r *adjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	if _, ok := r.d.adjustments[adj.ID]; ok {
		return fmt.Errorf("%w: ajuste %s", domain.ErrDuplicate, adj.ID)
	}
	r.d.adjustments[adj.ID] = cloneAdjustment(*adj)
	return nil
}

func (r *adjustmentRepo) GetByID(_ context.Context, id string) (*entity.StockAdjustment, error) {
	adj, ok := r.d.adjustments[id]
	if !ok {
		return nil, nil
	}
	adj = cloneAdjustment(adj)
	return &adj, nil
}

func (r *adjustmentRepo) Update(_ context.Context, adj *entity.StockAdjustment) error {
	if _, ok := r.d.adjustments[adj.ID]; !ok {
		return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adj.ID)
	}
	r.d.adjustments[adj.ID] = cloneAdjustment(*adj)
	return nil
}

func (r *adjustmentRepo) SaveHeader(_ context.Context, adj *entity.StockAdjustment) error {
	stored, ok := r.d.adjustments[adj.ID]
	if !ok {
		return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adj.ID)
	}
	stored.AdjustmentNumber = adj.AdjustmentNumber
	stored.Type = adj.Type
	stored.Status = adj.Status
	stored.Reason = adj.Reason
	stored.ApprovedBy = adj.ApprovedBy
	stored.ApprovedAt = adj.ApprovedAt
	stored.PostedBy = adj.PostedBy
	stored.PostedAt = adj.PostedAt
	stored.UpdatedAt = adj.UpdatedAt
	r.d.adjustments[adj.ID] = stored
	return nil
}

// ── traslados ───────────────────────────────────────────────────────────────

type transferRepo struct{ d *data }

func (r *transferRepo) Create(_ context.Context, tr *entity.StockTransfer) error {
	if _, ok := r.d.transfers[tr.ID]; ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, tr.ID)
	}
	r.d.transfers[tr.ID] = cloneTransfer(*tr)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	tr, ok := r.d.transfers[id]
	if !ok {
		return nil, nil
	}
	tr = cloneTransfer(tr)
	return &tr, nil
}

func (r *transferRepo) Update(_ context.Context, tr *entity.StockTransfer) error {
	if _, ok := r.d.transfers[tr.ID]; !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, tr.ID)
	}
	r.d.transfers[tr.ID] = cloneTransfer(*tr)
	return nil
}

func (r *transferRepo) SaveHeader(_ context.Context, tr *entity.StockTransfer) error {
	stored, ok := r.d.transfers[tr.ID]
	if !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, tr.ID)
	}
	stored.TransferNumber = tr.TransferNumber
	stored.SourceWarehouseID = tr.SourceWarehouseID
	stored.DestinationWarehouseID = tr.DestinationWarehouseID
	stored.Status = tr.Status
	stored.ApprovedBy = tr.ApprovedBy
	stored.ApprovedAt = tr.ApprovedAt
	stored.ReceivedBy = tr.ReceivedBy
	stored.ReceivedAt = tr.ReceivedAt
	stored.UpdatedAt = tr.UpdatedAt
	r.d.transfers[tr.ID] = stored
	return nil
}

// ── retenciones ─────────────────────────────────────────────────────────────

type reservationRepo struct{ d *data }

func (r *reservationRepo) GetForUpdate(_ context.Context, orderID, productID, warehouseID string) (*entity.StockReservation, error) {
	for _, res := range r.d.reservations {
		if res.OrderID == orderID && res.ProductID == productID && res.WarehouseID == warehouseID {
			res := res
			return &res, nil
		}
	}
	return nil, nil
}

func (r *reservationRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.StockReservation, error) {
	var list []*entity.StockReservation
	for _, res := range r.d.reservations {
		if res.OrderID == orderID {
			res := res
			list = append(list, &res)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r *reservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	existing, _ := r.GetForUpdate(ctx, res.OrderID, res.ProductID, res.WarehouseID)
	if existing != nil {
		return fmt.Errorf("%w: retención de %s para la orden %s",
			domain.ErrDuplicate, res.ProductID, res.OrderID)
	}
	r.d.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepo) Save(_ context.Context, res *entity.StockReservation) error {
	if _, ok := r.d.reservations[res.ID]; !ok {
		return fmt.Errorf("%w: retención %s", domain.ErrNotFound, res.ID)
	}
	r.d.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepo) Delete(_ context.Context, id string) error {
	delete(r.d.reservations, id)
	return nil
}
