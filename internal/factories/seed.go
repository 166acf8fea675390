package factories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SeedSummary struct {
	BusinessUnit       models.BusinessUnit `json:"business_unit"`
	IngredientsCreated int                 `json:"ingredients_created"`
	IngredientsReused  int                 `json:"ingredients_reused"`
	MenuItems          int                 `json:"menu_items"`
	RecipeLines        int                 `json:"recipe_lines"`
	Deals              int                 `json:"deals"`
	OpeningInvoiceID   string              `json:"opening_invoice_id,omitempty"`
}

// Seeder persists a generated catalog. Stock goes through the inventory
// service so every opening quantity has a ledger entry; the catalog is bulk
// inserted in one transaction.
type Seeder struct {
	store     repositories.Store
	inventory *inventory.Service
	logger    *zap.Logger
}

func NewSeeder(store repositories.Store, inv *inventory.Service, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, inventory: inv, logger: logger.Named("seed")}
}

// Steps is the number of progress ticks Seed reports for catalog.
func Steps(catalog *Catalog) int {
	return len(catalog.Ingredients) + 1
}

// Seed writes catalog and calls tick after each step. Ingredients that
// already exist by name are reused rather than restocked.
func (s *Seeder) Seed(ctx context.Context, catalog *Catalog, tick func()) (*SeedSummary, error) {
	if tick == nil {
		tick = func() {}
	}
	summary := &SeedSummary{BusinessUnit: catalog.BusinessUnit}

	existing, err := s.inventory.ListIngredients(ctx, catalog.BusinessUnit)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, ing := range existing {
		byName[strings.ToLower(ing.Name)] = ing.ID
	}

	invoiceID, err := s.openingInvoice(ctx, catalog, byName)
	if err != nil {
		return nil, err
	}
	summary.OpeningInvoiceID = invoiceID

	ids := make([]string, len(catalog.Ingredients))
	for i, seed := range catalog.Ingredients {
		if id, ok := byName[strings.ToLower(seed.Input.Name)]; ok {
			ids[i] = id
			summary.IngredientsReused++
			tick()
			continue
		}
		ing, err := s.inventory.CreateIngredient(ctx, seed.Input)
		if err != nil {
			return nil, fmt.Errorf("seed ingredient %s: %w", seed.Input.Name, err)
		}
		if seed.Quantity.IsPositive() {
			if _, err := s.inventory.Restock(ctx, ing.ID, seed.Quantity, seed.AmountTotal, invoiceID); err != nil {
				return nil, fmt.Errorf("seed restock %s: %w", seed.Input.Name, err)
			}
		}
		ids[i] = ing.ID
		summary.IngredientsCreated++
		tick()
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.Catalog().BulkCreateMenuItems(ctx, catalog.MenuItems); err != nil {
			return fmt.Errorf("bulk create menu items: %w", err)
		}
		for _, r := range catalog.Recipes {
			err := tx.Catalog().AddRecipeLine(ctx, models.RecipeLine{
				MenuItemID:   r.MenuItemID,
				IngredientID: ids[r.IngredientIndex],
				Quantity:     r.Quantity,
				BusinessUnit: catalog.BusinessUnit,
			})
			if errors.Is(err, models.ErrDuplicateRecipeLine) {
				continue
			}
			if err != nil {
				return err
			}
		}
		for _, deal := range catalog.Deals {
			if err := tx.Catalog().CreateDeal(ctx, deal); err != nil {
				return fmt.Errorf("create deal %s: %w", deal.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tick()

	summary.MenuItems = len(catalog.MenuItems)
	summary.RecipeLines = len(catalog.Recipes)
	summary.Deals = len(catalog.Deals)
	s.logger.Info("catalog seeded",
		zap.String("business_unit", string(catalog.BusinessUnit)),
		zap.Int("ingredients_created", summary.IngredientsCreated),
		zap.Int("menu_items", summary.MenuItems),
		zap.Int("deals", summary.Deals),
	)
	return summary, nil
}

// openingInvoice records one supplier invoice covering the opening stock of
// every ingredient Seed is about to create. It returns "" when nothing will be
// restocked.
func (s *Seeder) openingInvoice(ctx context.Context, catalog *Catalog, existing map[string]string) (string, error) {
	total := decimal.Zero
	for _, seed := range catalog.Ingredients {
		if _, ok := existing[strings.ToLower(seed.Input.Name)]; ok || !seed.Quantity.IsPositive() {
			continue
		}
		total = total.Add(seed.AmountTotal)
	}
	if total.IsZero() {
		return "", nil
	}

	now := time.Now()
	invoice := &models.SupplierInvoice{
		ID:            cuid.New(),
		SupplierName:  "Opening stock",
		InvoiceNumber: "SEED-" + cuid.Slug(),
		Amount:        total,
		Currency:      models.DefaultCurrency,
		DateReceived:  now.UTC().Format("2006-01-02"),
		BusinessUnit:  catalog.BusinessUnit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Invoices().Create(ctx, invoice)
	})
	if err != nil {
		return "", fmt.Errorf("seed opening invoice: %w", err)
	}
	return invoice.ID, nil
}
