package settings

import (
	"context"
	"errors"
)

var ErrPersistence = errors.New("settings persistence error")

type Repository interface {
	// Upsert overwrites value, type and description of an existing key and
	// refreshes updated_at.
	Upsert(ctx context.Context, e Entry) error
	// Fetch returns (nil, nil) for an unknown key.
	Fetch(ctx context.Context, key string) (*Entry, error)
}
