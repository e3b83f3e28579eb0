package ports

import (
	"context"

	"file-vault-api/internal/infrastructure/scheduler"
)

type SchedulerClient interface {
	Submit(ctx context.Context, tasks []scheduler.Task) error
}
