package sharing

import (
	"time"

	"github.com/google/uuid"
)

type (
	// Grant is a pure (file, user) access relation, independent of ownership.
	Grant struct {
		FileID uuid.UUID
		UserID uuid.UUID

		CreatedAt time.Time
	}
	Grants []*Grant
)
