package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type IngredientRepository struct {
	tx pgx.Tx
}

const ingredientColumns = `
    id, name, unit, quantity, price_per_unit, min_quantity,
    COALESCE(supplier_phone, ''), business_unit, created_at, updated_at
`

func scanIngredient(row pgx.Row) (*models.Ingredient, error) {
	ing := &models.Ingredient{}
	err := row.Scan(
		&ing.ID,
		&ing.Name,
		&ing.Unit,
		&ing.Quantity,
		&ing.PricePerUnit,
		&ing.MinQuantity,
		&ing.SupplierPhone,
		&ing.BusinessUnit,
		&ing.CreatedAt,
		&ing.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrIngredientNotFound
	}
	return ing, err
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	query := `
        INSERT INTO ingredients (
            id, name, unit, quantity, price_per_unit, min_quantity,
            supplier_phone, business_unit, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
        )
    `
	_, err := r.tx.Exec(ctx, query,
		ingredient.ID,
		ingredient.Name,
		ingredient.Unit,
		ingredient.Quantity,
		ingredient.PricePerUnit,
		ingredient.MinQuantity,
		nullable(ingredient.SupplierPhone),
		ingredient.BusinessUnit,
		ingredient.CreatedAt,
		ingredient.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateIngredient
	}
	if err != nil {
		return fmt.Errorf("failed to insert ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepository) Get(ctx context.Context, id string) (*models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1 AND deleted_at IS NULL`
	return scanIngredient(r.tx.QueryRow(ctx, query, id))
}

func (r *IngredientRepository) GetForUpdate(ctx context.Context, id string) (*models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return scanIngredient(r.tx.QueryRow(ctx, query, id))
}

func (r *IngredientRepository) ExistsByName(ctx context.Context, businessUnit models.BusinessUnit, name, excludeID string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM ingredients
            WHERE business_unit = $1 AND lower(name) = lower($2) AND id <> $3
              AND deleted_at IS NULL
        )
    `
	var exists bool
	err := r.tx.QueryRow(ctx, query, businessUnit, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *IngredientRepository) List(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients
        WHERE business_unit = $1 AND deleted_at IS NULL ORDER BY name`
	rows, err := r.tx.Query(ctx, query, businessUnit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*models.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient row: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (r *IngredientRepository) UpdateMetadata(ctx context.Context, ingredient *models.Ingredient) error {
	query := `
        UPDATE ingredients
        SET name = $2, unit = $3, min_quantity = $4, supplier_phone = $5, updated_at = $6
        WHERE id = $1 AND deleted_at IS NULL
    `
	tag, err := r.tx.Exec(ctx, query,
		ingredient.ID,
		ingredient.Name,
		ingredient.Unit,
		ingredient.MinQuantity,
		nullable(ingredient.SupplierPhone),
		ingredient.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateIngredient
	}
	if err != nil {
		return fmt.Errorf("failed to update ingredient %s: %w", ingredient.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrIngredientNotFound
	}
	return nil
}

func (r *IngredientRepository) UpdateStock(ctx context.Context, id string, quantity, pricePerUnit decimal.Decimal, updatedAt time.Time) error {
	query := `
        UPDATE ingredients
        SET quantity = $2, price_per_unit = $3, updated_at = $4
        WHERE id = $1 AND deleted_at IS NULL
    `
	tag, err := r.tx.Exec(ctx, query, id, quantity, pricePerUnit, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update stock for ingredient %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrIngredientNotFound
	}
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id string, at time.Time) error {
	query := `
        UPDATE ingredients
        SET deleted_at = $2, updated_at = $2
        WHERE id = $1 AND deleted_at IS NULL
    `
	tag, err := r.tx.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrIngredientNotFound
	}
	return nil
}
