package storage

import "fmt"

// Open builds the Store named by the configured backend.
func Open(backend, sqlitePath string) (Store, error) {
	switch backend {
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backend)
	}
}
