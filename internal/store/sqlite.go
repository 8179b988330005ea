package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"timekeeper/internal/logging"
	"timekeeper/internal/types"

	_ "modernc.org/sqlite"
)

const attendanceSchema = `
CREATE TABLE IF NOT EXISTS attendance (
	date    TEXT PRIMARY KEY,
	day     TEXT NOT NULL,
	status  TEXT NOT NULL DEFAULT '',
	remarks TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore keeps the attendance table in SQLite, keyed by ISO date.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
}

// NewSQLiteStore opens (and initializes) the database at path.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", types.ErrStoreUnreadable, err)
	}
	// One connection: an in-memory database is per-connection, and writes
	// here are serialized anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, dbPath: path}
	if err := s.EnsureInitialized(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) EnsureInitialized(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, attendanceSchema); err != nil {
		return fmt.Errorf("%w: failed to create table: %w", types.ErrStoreWriteFailed, err)
	}
	if err := RunMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	return nil
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc rowScanner) (types.Record, error) {
	var date, day, status, remarks string
	if err := sc.Scan(&date, &day, &status, &remarks); err != nil {
		return types.Record{}, err
	}
	d, err := types.ParseDate(date)
	if err != nil {
		return types.Record{}, err
	}
	return types.NewRecord(d, types.ParseStatus(status), remarks), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findWith(ctx context.Context, q queryer, date time.Time) (*types.Record, error) {
	key := types.DateOf(date).Format(types.DateLayout)
	row := q.QueryRowContext(ctx, `SELECT date, day, status, remarks FROM attendance WHERE date = ?`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) Find(ctx context.Context, date time.Time) (*types.Record, error) {
	return findWith(ctx, s.db, date)
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec types.Record, mode types.WriteMode) (types.Record, error) {
	rec = rec.Normalize()
	if rec.Date.IsZero() {
		return rec, fmt.Errorf("record has no date")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	defer tx.Rollback()

	existing, err := findWith(ctx, tx, rec.Date)
	if err != nil {
		return rec, err
	}

	stored := rec
	if existing != nil {
		switch mode {
		case types.ModeOverwrite:
			stored = existing.Overwrite(rec)
		case types.ModeMerge:
			stored = existing.Merge(rec)
		default:
			return *existing, fmt.Errorf("%w for %s", types.ErrRecordExists, rec.DateString())
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance (date, day, status, remarks, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET day = excluded.day, status = excluded.status,
			remarks = excluded.remarks, updated_at = excluded.updated_at`,
		stored.DateString(), stored.Day, string(stored.Status), stored.Remarks, stamp())
	if err != nil {
		return rec, fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return rec, fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}

	logging.StoreDebug("sqlite upsert %s mode=%s", stored.DateString(), mode)
	return stored, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, date time.Time) error {
	key := types.DateOf(date).Format(types.DateLayout)
	res, err := s.db.ExecContext(ctx, `UPDATE attendance SET status = '', remarks = '', updated_at = ? WHERE date = ?`, stamp(), key)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	if n == 0 {
		return fmt.Errorf("%w for %s to clear", types.ErrNotFound, key)
	}
	return nil
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
	}
	defer rows.Close()

	out := []types.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStoreUnreadable, err)
	}
	return out, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]types.Record, error) {
	return s.list(ctx, `SELECT date, day, status, remarks FROM attendance ORDER BY date ASC`)
}

func (s *SQLiteStore) ListMonth(ctx context.Context, month string) ([]types.Record, error) {
	m, ok := types.ParseMonth(month)
	if !ok {
		return []types.Record{}, nil
	}
	return s.list(ctx,
		`SELECT date, day, status, remarks FROM attendance WHERE substr(date, 6, 2) = ? ORDER BY date ASC`,
		fmt.Sprintf("%02d", int(m)))
}

func (s *SQLiteStore) PrefillMonth(ctx context.Context, month time.Month, year int) (int, error) {
	fill, err := monthRows(month, year)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	defer tx.Rollback()

	added, now := 0, stamp()
	for _, r := range fill {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO attendance (date, day, status, remarks, updated_at) VALUES (?, ?, ?, ?, ?)`,
			r.DateString(), r.Day, string(r.Status), r.Remarks, now)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrStoreWriteFailed, err)
	}
	logging.Store("sqlite prefill %s %d: %d rows added", month, year, added)
	return added, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
