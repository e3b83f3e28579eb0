package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "file-vault-api/internal/domain/settings"
)

type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) domain.Repository {
	return &Repository{db: db}
}

func persistence(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

func (r *Repository) Upsert(ctx context.Context, e domain.Entry) error {
	if _, err := r.db.Exec(ctx, UpsertSetting, e.Key, e.Value, string(e.Type), e.Description); err != nil {
		return persistence(err)
	}

	return nil
}

func (r *Repository) Fetch(ctx context.Context, key string) (*domain.Entry, error) {
	e := new(domain.Entry)
	err := r.db.QueryRow(ctx, SelectSetting, key).Scan(
		&e.Key,
		&e.Value,
		&e.Type,
		&e.Description,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistence(err)
	}

	return e, nil
}
