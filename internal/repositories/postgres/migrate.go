package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema through database/sql so it can run before the
// pgx pool is needed. Every statement is idempotent.
func Migrate(ctx context.Context, config models.DatabaseConfig) error {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("error pinging database: %w", err)
	}

	return execTxContext(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return describePQError(err)
		}
		return nil
	})
}

func execTxContext(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func describePQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("migration failed (%s %s): %s: %w", pqErr.Code, pqErr.Code.Name(), pqErr.Message, err)
	}
	return fmt.Errorf("migration failed: %w", err)
}
