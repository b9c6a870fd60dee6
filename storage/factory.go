package storage

import (
	"fmt"
	"strings"
)

// NewStore builds the backend named by kind. The sqlite backend needs a
// database path.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(kind) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, fmt.Errorf("sqlite store: path is required")
		}
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes store if its backend holds resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
