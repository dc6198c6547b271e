package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Store es el backend en memoria para modo dev/demo (sin DATABASE_URL) y para
// pruebas. Guarda copias por valor; el TxRunner serializa los flujos con un
// mutex (el equivalente de los bloqueos de fila) y revierte con snapshot si el
// callback falla, imitando el todo-o-nada de una transacción.
type Store struct {
	mu   sync.Mutex
	data *data
}

type data struct {
	stocks         map[string]entity.Stock // por id
	stockIDByKey   map[string]string       // productID|warehouseID -> id
	serials        map[string]entity.SerialUnit
	ledger         []entity.LedgerEntry
	products       map[string]entity.Product
	warehouses     map[string]entity.Warehouse
	managers       map[string]map[string]bool // warehouseID -> userID
	purchaseOrders map[string]entity.PurchaseOrder
	receipts       map[string]entity.PurchaseReceipt
	orders         map[string]entity.SalesOrder
	outbounds      map[string]entity.OutboundDocument
	adjustments    map[string]entity.StockAdjustment
	transfers      map[string]entity.StockTransfer
	reservations   map[string]entity.StockReservation
}

func newData() *data {
	return &data{
		stocks:         map[string]entity.Stock{},
		stockIDByKey:   map[string]string{},
		serials:        map[string]entity.SerialUnit{},
		products:       map[string]entity.Product{},
		warehouses:     map[string]entity.Warehouse{},
		managers:       map[string]map[string]bool{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		receipts:       map[string]entity.PurchaseReceipt{},
		orders:         map[string]entity.SalesOrder{},
		outbounds:      map[string]entity.OutboundDocument{},
		adjustments:    map[string]entity.StockAdjustment{},
		transfers:      map[string]entity.StockTransfer{},
		reservations:   map[string]entity.StockReservation{},
	}
}

// New construye un Store vacío.
func New() *Store {
	return &Store{data: newData()}
}

func stockKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

// ─────────────────────────────────────────────────────────────────────────────
// Siembra (colaboradores externos: catálogo, bodegas, órdenes)
// ─────────────────────────────────────────────────────────────────────────────

// SeedProduct registra un producto del catálogo.
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// SeedWarehouse registra una bodega.
func (s *Store) SeedWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.warehouses[w.ID] = w
}

// SeedManager registra a un usuario como encargado de la bodega.
func (s *Store) SeedManager(warehouseID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.managers[warehouseID] == nil {
		s.data.managers[warehouseID] = map[string]bool{}
	}
	s.data.managers[warehouseID][userID] = true
}

// SeedPurchaseOrder registra una orden de compra con sus líneas.
func (s *Store) SeedPurchaseOrder(po entity.PurchaseOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.purchaseOrders[po.ID] = clonePurchaseOrder(po)
}

// SeedOrder registra una orden (interna o B2B) con sus líneas planificadas.
func (s *Store) SeedOrder(o entity.SalesOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.orders[o.ID] = cloneOrder(o)
}

// ─────────────────────────────────────────────────────────────────────────────
// TxRunner
// ─────────────────────────────────────────────────────────────────────────────

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks contra el Store bajo el mutex global, con
// snapshot previo y restauración si el callback devuelve error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con el Set atado al store. Si fn falla, el estado completo
// vuelve al snapshot tomado al inicio.
func (r *TxRunner) Run(ctx context.Context, fn func(repos *repository.Set) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := r.store.data.clone()
	if err := fn(newSet(r.store.data)); err != nil {
		r.store.data = snapshot
		return err
	}
	return nil
}

// ReadRepos devuelve repositorios de solo lectura con bloqueo por llamada, para
// los casos de uso de consulta que en PostgreSQL irían atados al pool.
func (s *Store) ReadRepos() *repository.Set {
	return &repository.Set{
		Stocks:   &lockedStockRepo{s},
		Serials:  &lockedSerialRepo{s},
		Ledger:   &lockedLedgerRepo{s},
		Products: &lockedProductRepo{s},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Clones (copias profundas por valor)
// ─────────────────────────────────────────────────────────────────────────────

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.stocks {
		c.stocks[k] = v
	}
	for k, v := range d.stockIDByKey {
		c.stockIDByKey[k] = v
	}
	for k, v := range d.serials {
		c.serials[k] = v
	}
	c.ledger = slices.Clone(d.ledger)
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range d.managers {
		m := make(map[string]bool, len(v))
		for u := range v {
			m[u] = true
		}
		c.managers[k] = m
	}
	for k, v := range d.purchaseOrders {
		c.purchaseOrders[k] = clonePurchaseOrder(v)
	}
	for k, v := range d.receipts {
		c.receipts[k] = cloneReceipt(v)
	}
	for k, v := range d.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range d.outbounds {
		c.outbounds[k] = cloneOutbound(v)
	}
	for k, v := range d.adjustments {
		c.adjustments[k] = cloneAdjustment(v)
	}
	for k, v := range d.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	return c
}

func clonePurchaseOrder(po entity.PurchaseOrder) entity.PurchaseOrder {
	po.Lines = slices.Clone(po.Lines)
	return po
}

func cloneReceipt(r entity.PurchaseReceipt) entity.PurchaseReceipt {
	lines := make([]entity.PurchaseReceiptLine, len(r.Lines))
	for i, l := range r.Lines {
		l.SerialNumbers = slices.Clone(l.SerialNumbers)
		lines[i] = l
	}
	r.Lines = lines
	return r
}

func cloneOrder(o entity.SalesOrder) entity.SalesOrder {
	o.Lines = slices.Clone(o.Lines)
	return o
}

func cloneOutbound(doc entity.OutboundDocument) entity.OutboundDocument {
	lines := make([]entity.OutboundLine, len(doc.Lines))
	for i, l := range doc.Lines {
		l.SerialNumbers = slices.Clone(l.SerialNumbers)
		lines[i] = l
	}
	doc.Lines = lines
	return doc
}

func cloneAdjustment(adj entity.StockAdjustment) entity.StockAdjustment {
	lines := make([]entity.AdjustmentLine, len(adj.Lines))
	for i, l := range adj.Lines {
		l.SerialNumbers = slices.Clone(l.SerialNumbers)
		lines[i] = l
	}
	adj.Lines = lines
	return adj
}

func cloneTransfer(tr entity.StockTransfer) entity.StockTransfer {
	lines := make([]entity.TransferLine, len(tr.Lines))
	for i, l := range tr.Lines {
		l.SerialIDs = slices.Clone(l.SerialIDs)
		lines[i] = l
	}
	tr.Lines = lines
	return tr
}
