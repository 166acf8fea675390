package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service owns every operation that changes stock. Each method runs in a
// single store transaction.
type Service struct {
	store  repositories.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store repositories.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.Named("inventory"),
		now:    time.Now,
	}
}

func (s *Service) CreateIngredient(ctx context.Context, input models.IngredientInput) (*models.IngredientWithStatus, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	switch {
	case !input.BusinessUnit.Valid():
		return nil, models.ErrInvalidBusinessUnit
	case input.Name == "":
		return nil, models.ErrInvalidName
	case input.Unit == "":
		return nil, models.ErrInvalidUnit
	case input.MinQuantity.IsNegative():
		return nil, models.ErrInvalidThreshold
	}

	now := s.now()
	ingredient := &models.Ingredient{
		ID:            cuid.New(),
		Name:          input.Name,
		Unit:          input.Unit,
		MinQuantity:   input.MinQuantity,
		SupplierPhone: strings.TrimSpace(input.SupplierPhone),
		BusinessUnit:  input.BusinessUnit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		exists, err := tx.Ingredients().ExistsByName(ctx, ingredient.BusinessUnit, ingredient.Name, "")
		if err != nil {
			return err
		}
		if exists {
			return models.ErrDuplicateIngredient.WithMessage(
				"ingredient %q already exists in %s, use restock to add stock", ingredient.Name, ingredient.BusinessUnit)
		}
		if err := tx.Ingredients().Create(ctx, ingredient); err != nil {
			return err
		}
		_, err = AppendTx(ctx, tx, ingredient, models.MovementRequest{
			IngredientID: ingredient.ID,
			Type:         models.MovementCreate,
			Reason:       "ingredient created",
		}, now)
		if err != nil {
			return err
		}
		return writeAudit(ctx, tx, ingredient, models.AuditCreate, ingredient.Quantity, ingredient.Quantity,
			map[string]interface{}{"phone": ingredient.SupplierPhone}, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingredient created",
		zap.String("ingredient_id", ingredient.ID),
		zap.String("name", ingredient.Name),
		zap.String("business_unit", string(ingredient.BusinessUnit)),
	)
	return WithStatus(ingredient), nil
}

// UpdateIngredient applies a partial metadata update. A quantity is only
// accepted while the ingredient has nothing in its ledger beyond its CREATE
// entry; it is then recorded as an ADJUST so the ledger still explains the
// snapshot.
func (s *Service) UpdateIngredient(ctx context.Context, id string, update models.IngredientUpdate) (*models.IngredientWithStatus, error) {
	var result *models.Ingredient
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		ing, err := tx.Ingredients().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		before := ing.Quantity
		changes := map[string]interface{}{}

		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return models.ErrInvalidName
			}
			exists, err := tx.Ingredients().ExistsByName(ctx, ing.BusinessUnit, name, ing.ID)
			if err != nil {
				return err
			}
			if exists {
				return models.ErrDuplicateIngredient.WithMessage("ingredient %q already exists in %s", name, ing.BusinessUnit)
			}
			changes["name"] = name
			ing.Name = name
		}
		if update.Unit != nil {
			unit := strings.TrimSpace(*update.Unit)
			if unit == "" {
				return models.ErrInvalidUnit
			}
			changes["unit"] = unit
			ing.Unit = unit
		}
		if update.MinQuantity != nil {
			if update.MinQuantity.IsNegative() {
				return models.ErrInvalidThreshold
			}
			changes["min_quantity"] = update.MinQuantity.String()
			ing.MinQuantity = *update.MinQuantity
		}
		if update.SupplierPhone != nil {
			ing.SupplierPhone = strings.TrimSpace(*update.SupplierPhone)
			changes["supplier_phone"] = ing.SupplierPhone
		}
		ing.UpdatedAt = now
		if err := tx.Ingredients().UpdateMetadata(ctx, ing); err != nil {
			return err
		}

		if update.Quantity != nil && !update.Quantity.Equal(ing.Quantity) {
			if update.Quantity.IsNegative() {
				return models.ErrInvalidQuantity.WithMessage("quantity cannot be negative")
			}
			entries, err := tx.Movements().CountByIngredient(ctx, ing.ID, models.MovementCreate)
			if err != nil {
				return err
			}
			if entries > 0 {
				return models.ErrQuantityLocked
			}
			_, err = AppendTx(ctx, tx, ing, models.MovementRequest{
				IngredientID: ing.ID,
				Type:         models.MovementAdjust,
				QtyDelta:     update.Quantity.Sub(ing.Quantity),
				Reason:       "initial quantity",
			}, now)
			if err != nil {
				return err
			}
			changes["quantity"] = ing.Quantity.String()
		}
		result = ing
		return writeAudit(ctx, tx, ing, models.AuditUpdate, ing.Quantity.Sub(before), ing.Quantity,
			map[string]interface{}{"updates": changes}, now)
	})
	if err != nil {
		return nil, err
	}
	return WithStatus(result), nil
}

// DeleteIngredient retires an ingredient whose ledger holds nothing but its
// CREATE entry and drops its recipe lines and alert events. The ingredient
// row and its CREATE entry stay for history, and the deletion is audited.
func (s *Service) DeleteIngredient(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		ing, err := tx.Ingredients().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		entries, err := tx.Movements().CountByIngredient(ctx, id, models.MovementCreate)
		if err != nil {
			return err
		}
		if entries > 0 {
			return models.ErrLedgerNotEmpty
		}
		if err := tx.Catalog().DeleteRecipeLinesForIngredient(ctx, id); err != nil {
			return err
		}
		if err := tx.Alerts().DeleteForIngredient(ctx, id); err != nil {
			return err
		}
		now := s.now()
		if err := writeAudit(ctx, tx, ing, models.AuditDelete, ing.Quantity.Neg(), decimal.Zero,
			map[string]interface{}{"phone": ing.SupplierPhone}, now); err != nil {
			return err
		}
		return tx.Ingredients().Delete(ctx, id, now)
	})
	if err != nil {
		return err
	}
	s.logger.Info("ingredient deleted",
		zap.String("ingredient_id", id),
		zap.String("user_id", models.UserIDFrom(ctx)),
	)
	return nil
}

func (s *Service) GetIngredient(ctx context.Context, id string) (*models.IngredientWithStatus, error) {
	var ing *models.Ingredient
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		ing, err = tx.Ingredients().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return WithStatus(ing), nil
}

func (s *Service) ListIngredients(ctx context.Context, businessUnit models.BusinessUnit) ([]*models.IngredientWithStatus, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	var ingredients []*models.Ingredient
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		ingredients, err = tx.Ingredients().List(ctx, businessUnit)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]*models.IngredientWithStatus, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, WithStatus(ing))
	}
	return out, nil
}

// ListMovements is the ledger read API: newest first, joined with the
// ingredient name. limit <= 0 selects the default; it is capped at the max.
func (s *Service) ListMovements(ctx context.Context, businessUnit models.BusinessUnit, limit int) ([]*models.MovementWithIngredient, error) {
	if !businessUnit.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	if limit <= 0 {
		limit = models.DefaultMovementsLimit
	}
	if limit > models.MaxMovementsLimit {
		limit = models.MaxMovementsLimit
	}

	var movements []*models.MovementWithIngredient
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		movements, err = tx.Movements().ListByBusinessUnit(ctx, businessUnit, limit)
		return err
	})
	return movements, err
}

func (s *Service) ListIngredientMovements(ctx context.Context, ingredientID string) ([]*models.InventoryMovement, error) {
	var movements []*models.InventoryMovement
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Ingredients().Get(ctx, ingredientID); err != nil {
			return err
		}
		var err error
		movements, err = tx.Movements().ListByIngredient(ctx, ingredientID)
		return err
	})
	return movements, err
}

// AppendMovement records a RESTOCK, CONSUME or ADJUST entry. CREATE and
// REVERSAL entries are produced only by CreateIngredient and UndoMovement.
func (s *Service) AppendMovement(ctx context.Context, req models.MovementRequest) (*models.InventoryMovement, error) {
	switch req.Type {
	case models.MovementRestock, models.MovementConsume, models.MovementAdjust:
	default:
		return nil, models.ErrInvalidMovementType.WithMessage("%q entries cannot be appended directly", req.Type)
	}

	var movement *models.InventoryMovement
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		ing, err := tx.Ingredients().GetForUpdate(ctx, req.IngredientID)
		if err != nil {
			return err
		}
		if err := checkInvoice(ctx, tx, ing, strings.TrimSpace(req.InvoiceID)); err != nil {
			return err
		}
		movement, err = AppendTx(ctx, tx, ing, req, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("movement appended",
		zap.String("movement_id", movement.ID),
		zap.String("ingredient_id", movement.IngredientID),
		zap.String("type", string(movement.MovementType)),
		zap.String("qty_change", movement.QtyChange.String()),
	)
	return movement, nil
}
