package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs every transaction at SERIALIZABLE isolation and replays it when
// PostgreSQL aborts it with a serialization failure or deadlock.
type Store struct {
	pool       *pgxpool.Pool
	maxRetries int
}

func NewStore(ctx context.Context, config models.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(config.URL())
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return NewStoreFromPool(pool, config.MaxTxRetries), nil
}

func NewStoreFromPool(pool *pgxpool.Pool, maxRetries int) *Store {
	return &Store{pool: pool, maxRetries: maxRetries}
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.execTx(ctx, fn)
		if err == nil || !isRetryableError(err) {
			return err
		}
		if attempt >= s.maxRetries {
			return fmt.Errorf("failed after %d retries: %w", s.maxRetries, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
}

func (s *Store) execTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01": // deadlock_detected
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Ingredients() repositories.IngredientRepository {
	return &IngredientRepository{tx: t.tx}
}
func (t *pgTx) Movements() repositories.MovementRepository { return &MovementRepository{tx: t.tx} }
func (t *pgTx) Orders() repositories.OrderRepository       { return &OrderRepository{tx: t.tx} }
func (t *pgTx) Tickets() repositories.TicketRepository     { return &TicketRepository{tx: t.tx} }
func (t *pgTx) Reports() repositories.ZReportRepository    { return &ZReportRepository{tx: t.tx} }
func (t *pgTx) Catalog() repositories.CatalogRepository    { return &CatalogRepository{tx: t.tx} }
func (t *pgTx) Alerts() repositories.AlertRepository       { return &AlertRepository{tx: t.tx} }
func (t *pgTx) Audits() repositories.AuditRepository       { return &AuditRepository{tx: t.tx} }
func (t *pgTx) Invoices() repositories.InvoiceRepository   { return &InvoiceRepository{tx: t.tx} }

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
