package ports

import (
	"context"
	"time"
)

type CleanupService interface {
	// VerifyToken compares a webhook-supplied token against the stored one.
	VerifyToken(ctx context.Context, token string) (bool, error)
	// Run executes one full expiry pass: promote, re-arm, delete, mark.
	Run(ctx context.Context, now time.Time) error
	// EnsureWebhookToken creates and stores the shared webhook token if none
	// exists yet, returning the current one.
	EnsureWebhookToken(ctx context.Context) (string, error)
}
