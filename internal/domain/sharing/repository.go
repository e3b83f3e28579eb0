package sharing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrPersistence = errors.New("sharing persistence error")

type Repository interface {
	// Grant is idempotent: an already existing grant is success.
	Grant(ctx context.Context, fileID, userID uuid.UUID) error
	// Revoke of an absent grant is not an error.
	Revoke(ctx context.Context, fileID, userID uuid.UUID) error
	FetchForFile(ctx context.Context, fileID uuid.UUID) (Grants, error)
	// RevokeAllForFiles removes every grant of the given files, used after a
	// hard delete.
	RevokeAllForFiles(ctx context.Context, fileIDs []uuid.UUID) error
}
