package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
)

type CatalogRepository struct {
	tx pgx.Tx
}

func (r *CatalogRepository) BulkCreateMenuItems(ctx context.Context, menuItems []*models.MenuItem) error {
	_, err := r.tx.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{
			"id", "name", "description", "price",
			"available", "business_unit", "created_at",
		},
		pgx.CopyFromSlice(len(menuItems), func(i int) ([]interface{}, error) {
			return []interface{}{
				menuItems[i].ID,
				menuItems[i].Name,
				nullable(menuItems[i].Description),
				menuItems[i].Price,
				menuItems[i].Available,
				string(menuItems[i].BusinessUnit),
				menuItems[i].CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy menu items: %w", err)
	}
	return nil
}

func (r *CatalogRepository) CreateDeal(ctx context.Context, deal *models.Deal) error {
	query := `
        INSERT INTO deals (
            id, name, description, price, active, business_unit, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7
        )
    `
	_, err := r.tx.Exec(ctx, query,
		deal.ID,
		deal.Name,
		nullable(deal.Description),
		deal.Price,
		deal.Active,
		deal.BusinessUnit,
		deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal: %w", err)
	}

	_, err = r.tx.CopyFrom(
		ctx,
		pgx.Identifier{"deal_items"},
		[]string{"deal_id", "menu_item_id", "quantity"},
		pgx.CopyFromSlice(len(deal.Items), func(i int) ([]interface{}, error) {
			return []interface{}{deal.ID, deal.Items[i].MenuItemID, deal.Items[i].Quantity}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert deal items: %w", err)
	}
	return nil
}

func (r *CatalogRepository) RecipesFor(ctx context.Context, menuItemIDs []string) (map[string][]models.RecipeLine, error) {
	query := `
        SELECT menu_item_id, ingredient_id, quantity, business_unit
        FROM menu_item_ingredients
        WHERE menu_item_id = ANY($1)
        ORDER BY menu_item_id, ingredient_id
    `
	rows, err := r.tx.Query(ctx, query, menuItemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := make(map[string][]models.RecipeLine)
	for rows.Next() {
		var line models.RecipeLine
		if err := rows.Scan(&line.MenuItemID, &line.IngredientID, &line.Quantity, &line.BusinessUnit); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipes[line.MenuItemID] = append(recipes[line.MenuItemID], line)
	}
	return recipes, rows.Err()
}

func (r *CatalogRepository) DealItemsFor(ctx context.Context, dealIDs []string) (map[string][]models.DealItem, error) {
	query := `
        SELECT deal_id, menu_item_id, quantity
        FROM deal_items
        WHERE deal_id = ANY($1)
        ORDER BY deal_id, menu_item_id
    `
	rows, err := r.tx.Query(ctx, query, dealIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query deal items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]models.DealItem)
	for rows.Next() {
		var item models.DealItem
		if err := rows.Scan(&item.DealID, &item.MenuItemID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deal item row: %w", err)
		}
		items[item.DealID] = append(items[item.DealID], item)
	}
	return items, rows.Err()
}

func (r *CatalogRepository) AddRecipeLine(ctx context.Context, line models.RecipeLine) error {
	query := `
        INSERT INTO menu_item_ingredients (menu_item_id, ingredient_id, quantity, business_unit)
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.tx.Exec(ctx, query, line.MenuItemID, line.IngredientID, line.Quantity, line.BusinessUnit)
	if isUniqueViolation(err) {
		return models.ErrDuplicateRecipeLine
	}
	if err != nil {
		return fmt.Errorf("failed to insert recipe line: %w", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteRecipeLinesForIngredient(ctx context.Context, ingredientID string) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM menu_item_ingredients WHERE ingredient_id = $1`, ingredientID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe lines for %s: %w", ingredientID, err)
	}
	return nil
}
