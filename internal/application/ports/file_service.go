package ports

import (
	"context"
	"io"

	"github.com/google/uuid"

	"file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/sharing"
)

type (
	// Identity is the authenticated principal acting on files.
	Identity struct {
		UserID         uuid.UUID
		OrganizationID *uuid.UUID
	}
	// Upload is an inbound byte stream of unknown length plus its descriptive
	// metadata.
	Upload struct {
		FileName string
		MimeType string
		Body     io.Reader
	}
)

type FileService interface {
	IngestFile(ctx context.Context, owner Identity, up Upload) (*file.FileRecord, error)
	FindVisibleFiles(ctx context.Context, requester Identity) (file.FileRecords, error)
	FindFileByID(ctx context.Context, requester Identity, fileID file.ID) (*file.FileRecord, error)
	ShareFile(ctx context.Context, requester Identity, fileID file.ID, userID uuid.UUID) error
	UnshareFile(ctx context.Context, requester Identity, fileID file.ID, userID uuid.UUID) error
	FindFileGrants(ctx context.Context, requester Identity, fileID file.ID) (sharing.Grants, error)
}
