package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Applier books the ingredients a submitted order used, exactly once.
type Applier struct {
	store  repositories.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewApplier(store repositories.Store, logger *zap.Logger) *Applier {
	return &Applier{
		store:  store,
		logger: logger.Named("consumption"),
		now:    time.Now,
	}
}

// Apply appends one CONSUME entry per ingredient the order needs. Stock is
// clamped at zero and any shortfall is reported rather than failing the
// order: the sale already happened. The inventory_applied flag is set in the
// same transaction, and an existing CONSUME for the order also counts as
// applied.
func (a *Applier) Apply(ctx context.Context, orderID string) (*models.ConsumptionResult, error) {
	var result *models.ConsumptionResult
	err := a.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		result = &models.ConsumptionResult{OrderID: orderID, Ingredients: []models.IngredientConsumption{}}

		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusSubmitted {
			return models.ErrInvalidTransition.WithMessage(
				"order %s is %s, inventory is applied to submitted orders only", order.ID, order.Status)
		}

		applied := order.InventoryApplied
		if !applied {
			applied, err = tx.Movements().ExistsForOrder(ctx, order.ID, models.MovementConsume)
			if err != nil {
				return err
			}
		}
		if applied {
			result.AlreadyApplied = true
			if order.InventoryApplied {
				return nil
			}
			order.InventoryApplied = true
			order.UpdatedAt = a.now()
			return tx.Orders().UpdateState(ctx, order)
		}

		required, err := requiredIngredients(ctx, tx.Catalog(), order)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(required))
		for id := range required {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		now := a.now()
		for _, id := range ids {
			entry, err := a.consume(ctx, tx, order, id, required[id], now)
			if err != nil {
				return err
			}
			if entry.AlertGenerated {
				result.AlertsGenerated++
			}
			result.Ingredients = append(result.Ingredients, entry)
		}

		order.InventoryApplied = true
		order.UpdatedAt = now
		return tx.Orders().UpdateState(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyApplied {
		a.logger.Info("inventory applied",
			zap.String("order_id", orderID),
			zap.Int("ingredients", len(result.Ingredients)),
			zap.Int("alerts", result.AlertsGenerated),
		)
	}
	return result, nil
}

func (a *Applier) consume(ctx context.Context, tx repositories.Tx, order *models.Order, ingredientID string, need decimal.Decimal, now time.Time) (models.IngredientConsumption, error) {
	ing, err := tx.Ingredients().GetForUpdate(ctx, ingredientID)
	if err != nil {
		return models.IngredientConsumption{}, fmt.Errorf("recipe ingredient %s: %w", ingredientID, err)
	}

	before := ing.Quantity
	beforeStatus := inventory.StockStatus(before, ing.MinQuantity)
	take := decimal.Min(need, decimal.Max(before, decimal.Zero))
	shortfall := need.Sub(take)

	if take.IsPositive() {
		reason := "order " + order.ID
		if shortfall.IsPositive() {
			reason = fmt.Sprintf("%s, short %s %s", reason, shortfall, ing.Unit)
		}
		_, err := inventory.AppendTx(ctx, tx, ing, models.MovementRequest{
			IngredientID: ing.ID,
			Type:         models.MovementConsume,
			QtyDelta:     take.Neg(),
			Reason:       reason,
			RefOrderID:   order.ID,
		}, now)
		if err != nil {
			return models.IngredientConsumption{}, err
		}
	}
	if shortfall.IsPositive() {
		a.logger.Warn("stock shortfall",
			zap.String("order_id", order.ID),
			zap.String("ingredient_id", ing.ID),
			zap.String("shortfall", shortfall.String()),
		)
	}

	entry := models.IngredientConsumption{
		IngredientID:     ing.ID,
		IngredientName:   ing.Name,
		RequiredQuantity: need,
		BeforeQuantity:   before,
		AfterQuantity:    ing.Quantity,
		Shortfall:        shortfall,
	}

	afterStatus := inventory.StockStatus(ing.Quantity, ing.MinQuantity)
	if afterStatus != beforeStatus && afterStatus != models.StockStatusInStock {
		err := tx.Alerts().Create(ctx, &models.StockAlertEvent{
			ID:             cuid.New(),
			IngredientID:   ing.ID,
			IngredientName: ing.Name,
			BusinessUnit:   ing.BusinessUnit,
			Status:         afterStatus,
			Quantity:       ing.Quantity,
			MinQuantity:    ing.MinQuantity,
			RefOrderID:     order.ID,
			CreatedAt:      now,
		})
		if err != nil {
			return models.IngredientConsumption{}, err
		}
		entry.AlertGenerated = true
	}
	return entry, nil
}

// requiredIngredients expands deals into their menu items and sums recipe
// quantities per ingredient. Lines without an item id consume nothing.
func requiredIngredients(ctx context.Context, catalog repositories.CatalogRepository, order *models.Order) (map[string]decimal.Decimal, error) {
	menuUnits := make(map[string]int)
	dealUnits := make(map[string]int)
	for _, item := range order.Items {
		if item.ItemID == "" {
			continue
		}
		switch item.ItemType {
		case models.ItemTypeMenu:
			menuUnits[item.ItemID] += item.Qty
		case models.ItemTypeDeal:
			dealUnits[item.ItemID] += item.Qty
		}
	}

	if len(dealUnits) > 0 {
		dealIDs := make([]string, 0, len(dealUnits))
		for id := range dealUnits {
			dealIDs = append(dealIDs, id)
		}
		dealItems, err := catalog.DealItemsFor(ctx, dealIDs)
		if err != nil {
			return nil, err
		}
		for dealID, items := range dealItems {
			for _, di := range items {
				menuUnits[di.MenuItemID] += dealUnits[dealID] * di.Quantity
			}
		}
	}

	required := make(map[string]decimal.Decimal)
	if len(menuUnits) == 0 {
		return required, nil
	}
	menuIDs := make([]string, 0, len(menuUnits))
	for id := range menuUnits {
		menuIDs = append(menuIDs, id)
	}
	recipes, err := catalog.RecipesFor(ctx, menuIDs)
	if err != nil {
		return nil, err
	}
	for menuID, lines := range recipes {
		units := decimal.NewFromInt(int64(menuUnits[menuID]))
		for _, line := range lines {
			required[line.IngredientID] = required[line.IngredientID].Add(line.Quantity.Mul(units))
		}
	}
	return required, nil
}
