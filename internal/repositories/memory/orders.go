package memory

import (
	"context"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
)

type orderRepo struct{ st *state }

func (r orderRepo) Create(ctx context.Context, order *models.Order) error {
	r.st.orders[order.ID] = copyOrder(order)
	r.st.orderIDs = append(r.st.orderIDs, order.ID)
	return nil
}

func (r orderRepo) Get(ctx context.Context, id string) (*models.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	out := copyOrder(o)
	if t, ok := r.st.tickets[id]; ok {
		cp := *t
		out.Ticket = &cp
	}
	return out, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	return r.Get(ctx, id)
}

func (r orderRepo) UpdateState(ctx context.Context, order *models.Order) error {
	o, ok := r.st.orders[order.ID]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.Status = order.Status
	o.ExternalRef = order.ExternalRef
	o.WebhookError = order.WebhookError
	o.InventoryApplied = order.InventoryApplied
	o.UpdatedAt = order.UpdatedAt
	return nil
}

func (r orderRepo) ListRecent(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.Order, error) {
	var out []*models.Order
	for i := len(r.st.orderIDs) - 1; i >= 0 && len(out) < limit; i-- {
		o := r.st.orders[r.st.orderIDs[i]]
		if o.BusinessUnit != businessUnit {
			continue
		}
		full, err := r.Get(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, nil
}

func (r orderRepo) ListSubmittedBetween(ctx context.Context, businessUnit models.BusinessUnit, from, to time.Time) ([]*models.Order, error) {
	var out []*models.Order
	for _, id := range r.st.orderIDs {
		o := r.st.orders[id]
		if o.BusinessUnit != businessUnit || o.Status != models.OrderStatusSubmitted {
			continue
		}
		if o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

type ticketRepo struct{ st *state }

func (r ticketRepo) GetByOrder(ctx context.Context, orderID string) (*models.Ticket, error) {
	t, ok := r.st.tickets[orderID]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (r ticketRepo) NextNumber(ctx context.Context, scope string) (int64, error) {
	r.st.counters[scope]++
	return r.st.counters[scope], nil
}

func (r ticketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	if _, exists := r.st.tickets[ticket.OrderID]; exists {
		return models.ErrInvalidTransition.WithMessage("order %s already has a ticket", ticket.OrderID)
	}
	cp := *ticket
	r.st.tickets[ticket.OrderID] = &cp
	return nil
}

type reportRepo struct{ st *state }

func reportKey(businessUnit models.BusinessUnit, day string) string {
	return string(businessUnit) + "|" + day
}

func (r reportRepo) Upsert(ctx context.Context, report *models.ZReport) error {
	key := reportKey(report.BusinessUnit, report.ReportDate)
	if existing, ok := r.st.reports[key]; ok {
		report.ID = existing.ID
	}
	cp := *report
	r.st.reports[key] = &cp
	return nil
}

func (r reportRepo) Get(ctx context.Context, businessUnit models.BusinessUnit, day string) (*models.ZReport, error) {
	rep, ok := r.st.reports[reportKey(businessUnit, day)]
	if !ok {
		return nil, models.ErrReportNotFound
	}
	cp := *rep
	return &cp, nil
}
