// internal/store/sqlite.go
//
// SQLite-backed Ledger.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Recording and listing finished game results.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/robalobadob/companion/assets"
	"github.com/robalobadob/companion/internal/game"
)

// tsLayout is fixed width so finished_at sorts correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteLedger struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if missing) the database at dsn, applies
// migrations, and returns a Ledger backed by it.
func OpenSQLite(dsn string, logger zerolog.Logger) (Ledger, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	migrations, err := assets.Migrations()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	if err := migrate(db, migrations, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteLedger{db: db, log: logger}, nil
}

// openDB ensures the parent directory exists for file DSNs, then opens the
// database with busy timeout and WAL journaling.
func openDB(dsn string) (*sql.DB, error) {
	if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies every *.sql file in fsys in lexical order, skipping files
// already listed in _migrations. Each file runs in its own transaction.
func migrate(db *sql.DB, fsys fs.FS, logger zerolog.Logger) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			logger.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		logger.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record inserts r; an existing ID is ignored.
func (s *sqliteLedger) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO game_results
            (id, session_id, kind, score, moves, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, string(r.Kind), r.Score, r.Moves,
		r.StartedAt.UTC().Format(tsLayout), r.FinishedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Get loads one result.
func (s *sqliteLedger) Get(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, session_id, kind, score, moves, started_at, finished_at
        FROM game_results WHERE id=?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	return r, err
}

// Recent lists results ordered by finish time, newest first.
func (s *sqliteLedger) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, session_id, kind, score, moves, started_at, finished_at
        FROM game_results
        ORDER BY finished_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Best is the per-game leaderboard.
func (s *sqliteLedger) Best(ctx context.Context, kind game.Kind, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, session_id, kind, score, moves, started_at, finished_at
        FROM game_results
        WHERE kind=?
        ORDER BY score DESC, finished_at ASC, rowid ASC
        LIMIT ?`, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteLedger) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (Result, error) {
	var (
		r                 Result
		kind              string
		started, finished string
	)
	if err := row.Scan(&r.ID, &r.SessionID, &kind, &r.Score, &r.Moves, &started, &finished); err != nil {
		return Result{}, err
	}
	r.Kind = game.Kind(kind)
	r.StartedAt = mustParse(started)
	r.FinishedAt = mustParse(finished)
	return r, nil
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
