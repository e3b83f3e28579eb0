package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileRecord struct {
		ID  uuid.UUID
		Key string

		OwnerID        uuid.UUID
		OrganizationID *uuid.UUID

		FileName string
		MimeType string
		FileSize uint64

		Infected             bool
		InfectionDescription *string
		AntivirusDBVersion   *string
		LastScan             *time.Time

		CreatedAt           time.Time
		Deleted             bool
		ScheduledDeletionAt *time.Time
	}
	FileRecords []*FileRecord
)
