package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

const ticketWidth = 32

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(3) + " TND"
}

func businessUnitLabel(bu models.BusinessUnit) string {
	if bu == models.BusinessUnitCoffee {
		return "Coffee"
	}
	return "Restaurant"
}

func center(s string) string {
	if len(s) >= ticketWidth {
		return s
	}
	return strings.Repeat(" ", (ticketWidth-len(s))/2) + s
}

func row(left, right string) string {
	gap := ticketWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// RenderTicket produces the plain-text receipt stored on a ticket.
func RenderTicket(shopName string, order *models.Order, number int64, at time.Time) string {
	rule := strings.Repeat("-", ticketWidth)
	var b strings.Builder

	fmt.Fprintln(&b, center(shopName))
	fmt.Fprintln(&b, center(at.Format("02/01/2006 15:04")))
	fmt.Fprintln(&b, center(fmt.Sprintf("Ticket #%d", number)))
	fmt.Fprintln(&b, center("Business Unit: "+businessUnitLabel(order.BusinessUnit)))
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Items")
	if len(order.Items) == 0 {
		fmt.Fprintln(&b, "No items")
	}
	for _, item := range order.Items {
		fmt.Fprintln(&b, row(fmt.Sprintf("%d x %s", item.Qty, item.NameSnapshot), formatMoney(item.LineTotalTND)))
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, row("Total", formatMoney(order.TotalTND)))
	fmt.Fprintf(&b, "Table: %s\n", orDash(order.TableNumber))
	fmt.Fprintf(&b, "Notes: %s\n", orDash(order.Notes))
	return b.String()
}
