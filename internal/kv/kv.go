// Package kv provides the key-value backends used when no host file bridge
// is available. Values are opaque byte strings.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("kv: key not found")

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Store is a minimal durable key-value map.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open opens the store for driver at path, creating it when absent.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBadger:
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}
