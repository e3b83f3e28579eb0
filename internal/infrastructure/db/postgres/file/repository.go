package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "file-vault-api/internal/domain/file"
)

// DB is the slice of pgxpool.Pool the repository needs, kept narrow so tests
// can stand in a pgxmock pool.
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

func scanRecord(row pgx.Row) (*FileRecord, error) {
	fr := new(FileRecord)
	err := row.Scan(
		&fr.ID,
		&fr.Key,

		&fr.OwnerID,
		&fr.OrganizationID,

		&fr.FileName,
		&fr.MimeType,
		&fr.FileSize,

		&fr.Infected,
		&fr.InfectionDescription,
		&fr.AntivirusDBVersion,
		&fr.LastScan,

		&fr.CreatedAt,
		&fr.Deleted,
		&fr.ScheduledDeletionAt,
	)
	if err != nil {
		return nil, err
	}

	return fr, nil
}

func (r *Repository) queryRecords(ctx context.Context, sql string, args ...any) (domain.FileRecords, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, persistence(err)
	}
	defer rows.Close()

	var frs FileRecords
	for rows.Next() {
		fr, err := scanRecord(rows)
		if err != nil {
			return nil, persistence(err)
		}
		frs = append(frs, fr)
	}
	if err = rows.Err(); err != nil {
		return nil, persistence(err)
	}

	return fromDBModels(&frs), nil
}

func (r *Repository) Insert(ctx context.Context, rec *domain.FileRecord) (*domain.FileRecord, error) {
	fr, err := scanRecord(r.db.QueryRow(
		ctx,
		InsertFile,
		rec.Key, rec.OwnerID, rec.OrganizationID, rec.FileName, rec.MimeType, rec.FileSize,
		rec.Infected, rec.InfectionDescription, rec.AntivirusDBVersion, rec.LastScan,
	))
	if err != nil {
		return nil, persistence(err)
	}

	return fromDBModel(fr), nil
}

func (r *Repository) FetchByID(ctx context.Context, fileID domain.ID, requesterID uuid.UUID, organizationID *uuid.UUID) (*domain.FileRecord, error) {
	fr, err := scanRecord(r.db.QueryRow(ctx, SelectFileVisible, fileID, requesterID, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistence(err)
	}

	return fromDBModel(fr), nil
}

func (r *Repository) FetchForOwner(ctx context.Context, ownerID uuid.UUID) (domain.FileRecords, error) {
	return r.queryRecords(ctx, SelectFilesForOwner, ownerID)
}

func (r *Repository) FetchForOrganization(ctx context.Context, organizationID uuid.UUID, excludeIDs []domain.ID) (domain.FileRecords, error) {
	return r.queryRecords(ctx, SelectFilesForOrganization, organizationID, nonNil(excludeIDs))
}

func (r *Repository) FetchShared(ctx context.Context, userID uuid.UUID, excludeIDs []domain.ID) (domain.FileRecords, error) {
	return r.queryRecords(ctx, SelectSharedFiles, userID, nonNil(excludeIDs))
}

func (r *Repository) ExistsForOwner(ctx context.Context, ownerID uuid.UUID, fileName string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, SelectFileNameExists, ownerID, fileName).Scan(&exists); err != nil {
		return false, persistence(err)
	}

	return exists, nil
}

func (r *Repository) FetchExpiryCandidateIDs(ctx context.Context, now time.Time, retention time.Duration) ([]domain.ID, error) {
	rows, err := r.db.Query(ctx, SelectExpiryCandidateIDs, now.Add(-retention))
	if err != nil {
		return nil, persistence(err)
	}
	defer rows.Close()

	var ids []domain.ID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, persistence(err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, persistence(err)
	}

	return ids, nil
}

func (r *Repository) MarkScheduledForDeletion(ctx context.Context, ids []domain.ID, deleteAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, ScheduleFilesForDeletion, ids, deleteAt); err != nil {
		return persistence(err)
	}

	return nil
}

func (r *Repository) FetchExpired(ctx context.Context, now time.Time) (domain.FileRecords, error) {
	return r.queryRecords(ctx, SelectExpiredFiles, now)
}

func (r *Repository) CountStaleScheduled(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, CountStaleScheduledFiles, olderThan).Scan(&n); err != nil {
		return 0, persistence(err)
	}

	return n, nil
}

func (r *Repository) MarkDeleted(ctx context.Context, ids []domain.ID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, SoftDeleteFiles, ids); err != nil {
		return persistence(err)
	}

	return nil
}

// id <> ALL(NULL) filters out every row, an empty array filters none.
func nonNil(ids []domain.ID) []domain.ID {
	if ids == nil {
		return []domain.ID{}
	}
	return ids
}
