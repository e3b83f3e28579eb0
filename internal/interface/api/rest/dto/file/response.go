package file

import (
	"time"

	"github.com/google/uuid"
)

// Storage keys and scan engine diagnostics stay internal, responses carry
// only the descriptive metadata.
type (
	FileRecord struct {
		ID                  uuid.UUID  `json:"id"`
		FileName            string     `json:"file_name"`
		MimeType            string     `json:"mime_type"`
		FileSize            uint64     `json:"file_size"`
		CreatedAt           time.Time  `json:"created_at"`
		ScheduledDeletionAt *time.Time `json:"scheduled_deletion_at,omitempty"`
	}
	FileRecords  []FileRecord
	ResponseData struct {
		Data FileRecords `json:"data"`
	}

	Grant struct {
		FileID    uuid.UUID `json:"file_id"`
		UserID    uuid.UUID `json:"user_id"`
		CreatedAt time.Time `json:"created_at"`
	}
	Grants             []Grant
	GrantsResponseData struct {
		Data Grants `json:"data"`
	}
)
