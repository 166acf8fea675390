package repositories

import (
	"context"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// Store hands out a transaction scope. Every repository obtained from a Tx
// reads and writes inside the same transaction; fn returning an error rolls
// everything back.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}

type Tx interface {
	Ingredients() IngredientRepository
	Movements() MovementRepository
	Orders() OrderRepository
	Tickets() TicketRepository
	Reports() ZReportRepository
	Catalog() CatalogRepository
	Alerts() AlertRepository
	Audits() AuditRepository
	Invoices() InvoiceRepository
}

type IngredientRepository interface {
	Create(ctx context.Context, ingredient *models.Ingredient) error
	Get(ctx context.Context, id string) (*models.Ingredient, error)
	// GetForUpdate locks the row until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Ingredient, error)
	ExistsByName(ctx context.Context, businessUnit models.BusinessUnit, name, excludeID string) (bool, error)
	List(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.Ingredient, error)
	UpdateMetadata(ctx context.Context, ingredient *models.Ingredient) error
	UpdateStock(ctx context.Context, id string, quantity, pricePerUnit decimal.Decimal, updatedAt time.Time) error
	// Delete retires the ingredient. Its row and ledger entries are kept;
	// Get, List and name checks stop seeing it.
	Delete(ctx context.Context, id string, at time.Time) error
}

type MovementRepository interface {
	// Append inserts the movement and assigns its Seq.
	Append(ctx context.Context, movement *models.InventoryMovement) error
	Get(ctx context.Context, id string) (*models.InventoryMovement, error)
	MarkReversed(ctx context.Context, id string) error
	CountByIngredient(ctx context.Context, ingredientID string, exclude ...models.MovementType) (int, error)
	ExistsAfter(ctx context.Context, ingredientID string, seq int64) (bool, error)
	ExistsForOrder(ctx context.Context, orderID string, movementType models.MovementType) (bool, error)
	ListByIngredient(ctx context.Context, ingredientID string) ([]*models.InventoryMovement, error)
	ListByBusinessUnit(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.MovementWithIngredient, error)
	ExistsForInvoice(ctx context.Context, invoiceID string) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// Get loads the order with its items and ticket.
	Get(ctx context.Context, id string) (*models.Order, error)
	GetForUpdate(ctx context.Context, id string) (*models.Order, error)
	UpdateState(ctx context.Context, order *models.Order) error
	ListRecent(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.Order, error)
	ListSubmittedBetween(ctx context.Context, businessUnit models.BusinessUnit, from, to time.Time) ([]*models.Order, error)
}

type TicketRepository interface {
	GetByOrder(ctx context.Context, orderID string) (*models.Ticket, error)
	// NextNumber increments and returns the counter for scope.
	NextNumber(ctx context.Context, scope string) (int64, error)
	Create(ctx context.Context, ticket *models.Ticket) error
}

type ZReportRepository interface {
	Upsert(ctx context.Context, report *models.ZReport) error
	Get(ctx context.Context, businessUnit models.BusinessUnit, day string) (*models.ZReport, error)
}

type CatalogRepository interface {
	BulkCreateMenuItems(ctx context.Context, items []*models.MenuItem) error
	CreateDeal(ctx context.Context, deal *models.Deal) error
	RecipesFor(ctx context.Context, menuItemIDs []string) (map[string][]models.RecipeLine, error)
	DealItemsFor(ctx context.Context, dealIDs []string) (map[string][]models.DealItem, error)
	AddRecipeLine(ctx context.Context, line models.RecipeLine) error
	DeleteRecipeLinesForIngredient(ctx context.Context, ingredientID string) error
}

type AlertRepository interface {
	Create(ctx context.Context, event *models.StockAlertEvent) error
	ListUnprocessed(ctx context.Context, limit int) ([]*models.StockAlertEvent, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) (*models.StockAlertEvent, error)
	DeleteForIngredient(ctx context.Context, ingredientID string) error
}

type AuditRepository interface {
	Create(ctx context.Context, audit *models.StockAudit) error
	// ListByBusinessUnit returns the newest audits first.
	ListByBusinessUnit(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.StockAudit, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.SupplierInvoice) error
	Get(ctx context.Context, id string) (*models.SupplierInvoice, error)
	List(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.SupplierInvoice, error)
	SetFile(ctx context.Context, id, fileURL string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
