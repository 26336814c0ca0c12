// Package storage provides the key-value backends behind the persistent cart store.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a minimal string-keyed byte store. Implementations overwrite on Set
// and treat Delete of an absent key as success.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
