package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

type ingredientRepo struct{ st *state }

func (r ingredientRepo) Create(ctx context.Context, ingredient *models.Ingredient) error {
	for _, existing := range r.st.ingredients {
		if existing.DeletedAt == nil && existing.BusinessUnit == ingredient.BusinessUnit && strings.EqualFold(existing.Name, ingredient.Name) {
			return models.ErrDuplicateIngredient
		}
	}
	cp := *ingredient
	r.st.ingredients[ingredient.ID] = &cp
	return nil
}

// live returns the stored ingredient unless it is missing or retired.
func (r ingredientRepo) live(id string) (*models.Ingredient, bool) {
	ing, ok := r.st.ingredients[id]
	if !ok || ing.DeletedAt != nil {
		return nil, false
	}
	return ing, true
}

func (r ingredientRepo) Get(ctx context.Context, id string) (*models.Ingredient, error) {
	ing, ok := r.live(id)
	if !ok {
		return nil, models.ErrIngredientNotFound
	}
	cp := *ing
	return &cp, nil
}

func (r ingredientRepo) GetForUpdate(ctx context.Context, id string) (*models.Ingredient, error) {
	return r.Get(ctx, id)
}

func (r ingredientRepo) ExistsByName(ctx context.Context, businessUnit models.BusinessUnit, name, excludeID string) (bool, error) {
	for id, ing := range r.st.ingredients {
		if id == excludeID || ing.DeletedAt != nil {
			continue
		}
		if ing.BusinessUnit == businessUnit && strings.EqualFold(ing.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r ingredientRepo) List(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.Ingredient, error) {
	var out []*models.Ingredient
	for _, ing := range r.st.ingredients {
		if ing.BusinessUnit != businessUnit || ing.DeletedAt != nil {
			continue
		}
		cp := *ing
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r ingredientRepo) UpdateMetadata(ctx context.Context, ingredient *models.Ingredient) error {
	ing, ok := r.live(ingredient.ID)
	if !ok {
		return models.ErrIngredientNotFound
	}
	ing.Name = ingredient.Name
	ing.Unit = ingredient.Unit
	ing.MinQuantity = ingredient.MinQuantity
	ing.SupplierPhone = ingredient.SupplierPhone
	ing.UpdatedAt = ingredient.UpdatedAt
	return nil
}

func (r ingredientRepo) UpdateStock(ctx context.Context, id string, quantity, pricePerUnit decimal.Decimal, updatedAt time.Time) error {
	ing, ok := r.live(id)
	if !ok {
		return models.ErrIngredientNotFound
	}
	ing.Quantity = quantity
	ing.PricePerUnit = pricePerUnit
	ing.UpdatedAt = updatedAt
	return nil
}

func (r ingredientRepo) Delete(ctx context.Context, id string, at time.Time) error {
	ing, ok := r.live(id)
	if !ok {
		return models.ErrIngredientNotFound
	}
	deleted := at
	ing.DeletedAt = &deleted
	ing.UpdatedAt = at
	return nil
}

type movementRepo struct{ st *state }

func (r movementRepo) Append(ctx context.Context, movement *models.InventoryMovement) error {
	r.st.seq++
	movement.Seq = r.st.seq
	cp := *movement
	r.st.movements = append(r.st.movements, &cp)
	return nil
}

func (r movementRepo) Get(ctx context.Context, id string) (*models.InventoryMovement, error) {
	for _, m := range r.st.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, models.ErrMovementNotFound
}

func (r movementRepo) MarkReversed(ctx context.Context, id string) error {
	for _, m := range r.st.movements {
		if m.ID == id {
			m.IsReversed = true
			return nil
		}
	}
	return models.ErrMovementNotFound
}

func (r movementRepo) CountByIngredient(ctx context.Context, ingredientID string, exclude ...models.MovementType) (int, error) {
	count := 0
	for _, m := range r.st.movements {
		if m.IngredientID != ingredientID || containsType(exclude, m.MovementType) {
			continue
		}
		count++
	}
	return count, nil
}

func containsType(types []models.MovementType, t models.MovementType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (r movementRepo) ExistsAfter(ctx context.Context, ingredientID string, seq int64) (bool, error) {
	for _, m := range r.st.movements {
		if m.IngredientID == ingredientID && m.Seq > seq {
			return true, nil
		}
	}
	return false, nil
}

func (r movementRepo) ExistsForOrder(ctx context.Context, orderID string, movementType models.MovementType) (bool, error) {
	for _, m := range r.st.movements {
		if m.RefOrderID == orderID && m.MovementType == movementType {
			return true, nil
		}
	}
	return false, nil
}

func (r movementRepo) ListByIngredient(ctx context.Context, ingredientID string) ([]*models.InventoryMovement, error) {
	var out []*models.InventoryMovement
	for _, m := range r.st.movements {
		if m.IngredientID == ingredientID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r movementRepo) ListByBusinessUnit(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.MovementWithIngredient, error) {
	var out []*models.MovementWithIngredient
	for i := len(r.st.movements) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.st.movements[i]
		ing, ok := r.st.ingredients[m.IngredientID]
		if !ok || ing.BusinessUnit != businessUnit {
			continue
		}
		out = append(out, &models.MovementWithIngredient{InventoryMovement: *m, IngredientName: ing.Name})
	}
	return out, nil
}

func (r movementRepo) ExistsForInvoice(ctx context.Context, invoiceID string) (bool, error) {
	for _, m := range r.st.movements {
		if m.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

type catalogRepo struct{ st *state }

func (r catalogRepo) BulkCreateMenuItems(ctx context.Context, items []*models.MenuItem) error {
	for _, item := range items {
		cp := *item
		r.st.menuItems[item.ID] = &cp
	}
	return nil
}

func (r catalogRepo) CreateDeal(ctx context.Context, deal *models.Deal) error {
	r.st.deals[deal.ID] = copyDeal(deal)
	return nil
}

func (r catalogRepo) RecipesFor(ctx context.Context, menuItemIDs []string) (map[string][]models.RecipeLine, error) {
	wanted := make(map[string]bool, len(menuItemIDs))
	for _, id := range menuItemIDs {
		wanted[id] = true
	}
	out := make(map[string][]models.RecipeLine)
	for _, line := range r.st.recipes {
		if wanted[line.MenuItemID] {
			out[line.MenuItemID] = append(out[line.MenuItemID], line)
		}
	}
	return out, nil
}

func (r catalogRepo) DealItemsFor(ctx context.Context, dealIDs []string) (map[string][]models.DealItem, error) {
	out := make(map[string][]models.DealItem)
	for _, id := range dealIDs {
		if deal, ok := r.st.deals[id]; ok {
			out[id] = append([]models.DealItem(nil), deal.Items...)
		}
	}
	return out, nil
}

func (r catalogRepo) AddRecipeLine(ctx context.Context, line models.RecipeLine) error {
	for _, existing := range r.st.recipes {
		if existing.MenuItemID == line.MenuItemID && existing.IngredientID == line.IngredientID {
			return models.ErrDuplicateRecipeLine
		}
	}
	r.st.recipes = append(r.st.recipes, line)
	return nil
}

func (r catalogRepo) DeleteRecipeLinesForIngredient(ctx context.Context, ingredientID string) error {
	kept := r.st.recipes[:0]
	for _, line := range r.st.recipes {
		if line.IngredientID != ingredientID {
			kept = append(kept, line)
		}
	}
	r.st.recipes = kept
	return nil
}

type alertRepo struct{ st *state }

func (r alertRepo) Create(ctx context.Context, event *models.StockAlertEvent) error {
	r.st.alerts = append(r.st.alerts, copyAlert(event))
	return nil
}

func (r alertRepo) ListUnprocessed(ctx context.Context, limit int) ([]*models.StockAlertEvent, error) {
	var out []*models.StockAlertEvent
	for _, a := range r.st.alerts {
		if len(out) == limit {
			break
		}
		if a.ProcessedAt == nil {
			out = append(out, copyAlert(a))
		}
	}
	return out, nil
}

func (r alertRepo) MarkProcessed(ctx context.Context, id string, at time.Time) (*models.StockAlertEvent, error) {
	for _, a := range r.st.alerts {
		if a.ID == id {
			processed := at
			a.ProcessedAt = &processed
			return copyAlert(a), nil
		}
	}
	return nil, models.ErrAlertNotFound
}

func (r alertRepo) DeleteForIngredient(ctx context.Context, ingredientID string) error {
	kept := r.st.alerts[:0]
	for _, a := range r.st.alerts {
		if a.IngredientID != ingredientID {
			kept = append(kept, a)
		}
	}
	r.st.alerts = kept
	return nil
}
