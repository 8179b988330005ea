package config

// Store backends.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ValidBackends lists all supported store backends.
var ValidBackends = []string{BackendXLSX, BackendSQLite, BackendMemory}

// StoreConfig configures the attendance record store.
type StoreConfig struct {
	Backend   string `yaml:"backend"`    // xlsx, sqlite, memory
	Path      string `yaml:"path"`       // workbook or database file
	SheetName string `yaml:"sheet_name"` // xlsx only
}
