package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mykharche/internal/core"
	"mykharche/internal/draft"
	applog "mykharche/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores drafts as one row per drawer and key.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers, one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source, used by tests.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save replaces the stored draft for drawerID in a single transaction.
func (r *SQLiteRepository) Save(ctx context.Context, drawerID string, entry core.DraftEntry) error {
	if drawerID == "" {
		return draft.ErrEmptyDrawerID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draft save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drafts WHERE drawer_id = ?`, drawerID); err != nil {
		return fmt.Errorf("clear previous draft: %w", err)
	}

	updatedAt := r.now().UTC().Unix()
	for key, value := range draft.Encode(entry) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO drafts (drawer_id, key, value, updated_at) VALUES (?, ?, ?, ?)`,
			drawerID, key, value, updatedAt); err != nil {
			return fmt.Errorf("save draft key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft save: %w", err)
	}

	r.logger.DebugContext(ctx, "Draft saved", applog.FieldDrawerID, drawerID, applog.FieldStep, entry.StepIndex)
	return nil
}

func (r *SQLiteRepository) Restore(ctx context.Context, drawerID string) (core.DraftEntry, bool, error) {
	if drawerID == "" {
		return core.DraftEntry{}, false, draft.ErrEmptyDrawerID
	}

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM drafts WHERE drawer_id = ?`, drawerID)
	if err != nil {
		return core.DraftEntry{}, false, fmt.Errorf("query draft: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(draft.Keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return core.DraftEntry{}, false, fmt.Errorf("scan draft row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return core.DraftEntry{}, false, fmt.Errorf("iterate draft rows: %w", err)
	}

	entry, found := draft.Decode(values)
	return entry, found, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, drawerID string) error {
	if drawerID == "" {
		return draft.ErrEmptyDrawerID
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE drawer_id = ?`, drawerID); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// PurgeOlderThan removes every draft whose newest key predates cutoff and
// returns the number of drawers dropped.
func (r *SQLiteRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	const stale = `SELECT drawer_id FROM drafts GROUP BY drawer_id HAVING MAX(updated_at) < ?`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin purge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM (`+stale+`)`, cutoff.UTC().Unix()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count stale drafts: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM drafts WHERE drawer_id IN (`+stale+`)`, cutoff.UTC().Unix()); err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit purge: %w", err)
	}
	return count, nil
}
