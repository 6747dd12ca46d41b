package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"passin/internal/domain"
)

type transactor struct {
	DB *sql.DB
}

// NewTransactor returns a Transactor backed by database/sql transactions.
func NewTransactor(db *sql.DB) domain.Transactor {
	return &transactor{DB: db}
}

// NewRepositories returns repositories bound to db, which may be a *sql.DB or a *sql.Tx.
func NewRepositories(db DBTX) domain.Repositories {
	return domain.Repositories{
		Users:    NewUserRepository(db),
		Events:   NewEventRepository(db),
		CheckIns: NewCheckInRepository(db),
	}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
