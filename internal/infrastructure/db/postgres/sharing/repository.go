package sharing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "file-vault-api/internal/domain/sharing"
	"file-vault-api/internal/infrastructure/db/postgres"
)

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
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

func (r *Repository) Grant(ctx context.Context, fileID, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, InsertGrant, fileID, userID); err != nil {
		// an existing grant is success
		if postgres.IsPgUniqueViolation(err) {
			return nil
		}
		return persistence(err)
	}

	return nil
}

func (r *Repository) Revoke(ctx context.Context, fileID, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, DeleteGrant, fileID, userID); err != nil {
		return persistence(err)
	}

	return nil
}

func (r *Repository) FetchForFile(ctx context.Context, fileID uuid.UUID) (domain.Grants, error) {
	rows, err := r.db.Query(ctx, SelectGrantsForFile, fileID)
	if err != nil {
		return nil, persistence(err)
	}
	defer rows.Close()

	var gs domain.Grants
	for rows.Next() {
		g := new(domain.Grant)

		if err = rows.Scan(
			&g.FileID,
			&g.UserID,
			&g.CreatedAt,
		); err != nil {
			return nil, persistence(err)
		}

		gs = append(gs, g)
	}
	if err = rows.Err(); err != nil {
		return nil, persistence(err)
	}

	return gs, nil
}

func (r *Repository) RevokeAllForFiles(ctx context.Context, fileIDs []uuid.UUID) error {
	if len(fileIDs) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, DeleteGrantsForFiles, fileIDs); err != nil {
		return persistence(err)
	}

	return nil
}
