// Package sqlite implements the embedded SQL storage backend for folio.
// All state lives in one database file; the schema is created and migrated
// when the backend is opened.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// DatabaseFile is the name of the database file inside the data directory.
const DatabaseFile = "folio.sqlite"

// busyTimeoutMS bounds how long a statement waits for another process's lock.
const busyTimeoutMS = 5000

// Backend implements types.Store on a SQLite database.
type Backend struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
	log    *slog.Logger
}

var (
	_ types.Store            = (*Backend)(nil)
	_ types.FileInfoAtSetter = (*Backend)(nil)
)

// Open opens (creating if needed) the database in dataDir and migrates its
// schema. No backend is returned when any step fails.
func Open(dataDir string) (*Backend, error) {
	if dataDir == "" {
		return nil, types.ErrDataDirEmpty
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return OpenFile(filepath.Join(dataDir, DatabaseFile))
}

// OpenFile opens the database at an explicit path.
func OpenFile(dbPath string) (*Backend, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", dbPath, busyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// One connection, so transactions and pragmas apply to the same handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}

	log := slog.Default().With("backend", types.BackendSQLite, "instance", newInstanceID())
	if err := migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	log.Debug("sqlite: opened database", "path", dbPath)
	return &Backend{db: db, path: dbPath, log: log}, nil
}

// Path returns the database file path.
func (b *Backend) Path() string {
	return b.path
}

// Close closes the database. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// newInstanceID generates a UUID v7 identifying this backend in logs.
func newInstanceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// nullableCoord maps an unset coordinate to SQL NULL.
func nullableCoord(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// loadedCoord maps a stored coordinate back to a bookmark coordinate. NULL and
// an exact 0.0 are both unset: databases written before coordinates existed
// hold zero there.
func loadedCoord(v sql.NullFloat64) *float64 {
	if !v.Valid || v.Float64 == 0 {
		return nil
	}
	return types.Coord(v.Float64)
}
