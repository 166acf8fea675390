package memory

import (
	"context"
	"sync"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
)

// Store keeps all state in process. Transactions are serialized by a single
// lock and run against a copy that replaces the live state only on success,
// which gives serializable isolation and full rollback.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	ingredients map[string]*models.Ingredient
	movements   []*models.InventoryMovement
	seq         int64
	menuItems   map[string]*models.MenuItem
	deals       map[string]*models.Deal
	recipes     []models.RecipeLine
	orders      map[string]*models.Order
	orderIDs    []string
	tickets     map[string]*models.Ticket
	counters    map[string]int64
	reports     map[string]*models.ZReport
	alerts      []*models.StockAlertEvent
	audits      []*models.StockAudit
	invoices    map[string]*models.SupplierInvoice
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		ingredients: make(map[string]*models.Ingredient),
		menuItems:   make(map[string]*models.MenuItem),
		deals:       make(map[string]*models.Deal),
		orders:      make(map[string]*models.Order),
		tickets:     make(map[string]*models.Ticket),
		counters:    make(map[string]int64),
		reports:     make(map[string]*models.ZReport),
		invoices:    make(map[string]*models.SupplierInvoice),
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Close() {}

func (st *state) clone() *state {
	c := newState()
	for id, ing := range st.ingredients {
		cp := *ing
		if ing.DeletedAt != nil {
			t := *ing.DeletedAt
			cp.DeletedAt = &t
		}
		c.ingredients[id] = &cp
	}
	c.movements = make([]*models.InventoryMovement, len(st.movements))
	for i, m := range st.movements {
		cp := *m
		c.movements[i] = &cp
	}
	c.seq = st.seq
	for id, item := range st.menuItems {
		cp := *item
		c.menuItems[id] = &cp
	}
	for id, deal := range st.deals {
		c.deals[id] = copyDeal(deal)
	}
	c.recipes = append([]models.RecipeLine(nil), st.recipes...)
	for id, order := range st.orders {
		c.orders[id] = copyOrder(order)
	}
	c.orderIDs = append([]string(nil), st.orderIDs...)
	for id, t := range st.tickets {
		cp := *t
		c.tickets[id] = &cp
	}
	for k, v := range st.counters {
		c.counters[k] = v
	}
	for k, r := range st.reports {
		cp := *r
		c.reports[k] = &cp
	}
	c.alerts = make([]*models.StockAlertEvent, len(st.alerts))
	for i, a := range st.alerts {
		c.alerts[i] = copyAlert(a)
	}
	// audits are append-only, so sharing the entries is safe
	c.audits = append([]*models.StockAudit(nil), st.audits...)
	for id, inv := range st.invoices {
		cp := *inv
		c.invoices[id] = &cp
	}
	return c
}

func copyDeal(d *models.Deal) *models.Deal {
	cp := *d
	cp.Items = append([]models.DealItem(nil), d.Items...)
	return &cp
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	cp.Ticket = nil
	return &cp
}

func copyAlert(a *models.StockAlertEvent) *models.StockAlertEvent {
	cp := *a
	if a.ProcessedAt != nil {
		t := *a.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}

type tx struct {
	st *state
}

func (t *tx) Ingredients() repositories.IngredientRepository { return ingredientRepo{t.st} }
func (t *tx) Movements() repositories.MovementRepository     { return movementRepo{t.st} }
func (t *tx) Orders() repositories.OrderRepository           { return orderRepo{t.st} }
func (t *tx) Tickets() repositories.TicketRepository         { return ticketRepo{t.st} }
func (t *tx) Reports() repositories.ZReportRepository        { return reportRepo{t.st} }
func (t *tx) Catalog() repositories.CatalogRepository        { return catalogRepo{t.st} }
func (t *tx) Alerts() repositories.AlertRepository           { return alertRepo{t.st} }
func (t *tx) Audits() repositories.AuditRepository           { return auditRepo{t.st} }
func (t *tx) Invoices() repositories.InvoiceRepository       { return invoiceRepo{t.st} }
