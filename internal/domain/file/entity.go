package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	ID = uuid.UUID

	// FileRecord is one row per successfully ingested object. It is created
	// only after both the scan and the upload settled clean, and after that
	// only the expiry flow mutates it.
	FileRecord struct {
		ID  ID
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
