package store

import (
	"fmt"

	"timekeeper/internal/config"
)

// Open builds the backend selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendXLSX, "":
		return NewXLSXStore(cfg.Path, cfg.SheetName), nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
}
