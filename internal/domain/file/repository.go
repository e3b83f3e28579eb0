package file

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrPersistence marks any store-level failure. Callers decide retry vs.
// abort, the repository itself never retries.
var ErrPersistence = errors.New("file persistence error")

type Repository interface {
	Insert(ctx context.Context, rec *FileRecord) (*FileRecord, error)
	// FetchByID returns (nil, nil) when the record does not exist or is not
	// visible to the requester (owner, same organization, or shared-with).
	FetchByID(ctx context.Context, fileID ID, requesterID uuid.UUID, organizationID *uuid.UUID) (*FileRecord, error)

	FetchForOwner(ctx context.Context, ownerID uuid.UUID) (FileRecords, error)
	FetchForOrganization(ctx context.Context, organizationID uuid.UUID, excludeIDs []ID) (FileRecords, error)
	FetchShared(ctx context.Context, userID uuid.UUID, excludeIDs []ID) (FileRecords, error)

	ExistsForOwner(ctx context.Context, ownerID uuid.UUID, fileName string) (bool, error)

	FetchExpiryCandidateIDs(ctx context.Context, now time.Time, retention time.Duration) ([]ID, error)
	MarkScheduledForDeletion(ctx context.Context, ids []ID, deleteAt time.Time) error
	FetchExpired(ctx context.Context, now time.Time) (FileRecords, error)
	CountStaleScheduled(ctx context.Context, olderThan time.Time) (int64, error)
	MarkDeleted(ctx context.Context, ids []ID) error
}
