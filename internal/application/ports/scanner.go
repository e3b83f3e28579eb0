package ports

import (
	"context"
	"io"

	"file-vault-api/internal/infrastructure/antivirus"
)

type Scanner interface {
	// Scan consumes the full reader and blocks until the one-shot verdict
	// arrives.
	Scan(ctx context.Context, r io.Reader) (antivirus.Verdict, error)
	Version(ctx context.Context) (string, error)
}
