package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// KV is the external byte store the save system persists through. All keys
// follow the scheme implemented by Keys. Implementations must return
// ErrNotFound from Get for absent keys and treat Remove of an absent key as
// a no-op.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
