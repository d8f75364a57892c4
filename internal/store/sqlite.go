// internal/store/sqlite.go
//
// SQLite database helpers and the SQLite-backed profile Store.
//
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations/*.sql files (idempotent, recorded in
//     _migrations).
//   - Persisting profiles as JSON documents keyed by player id.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/game"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens (and creates if missing) a SQLite database file.
// The parent directory of dsn is created when needed.
func Open(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations in lexical order.
//
// Each file runs in its own transaction unless it manages one itself
// (BEGIN TRANSACTION or PRAGMA foreign_keys=OFF), and is recorded in
// _migrations so it is applied once.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		name := filepath.Base(f)

		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		b, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		sqlText := string(b)

		upper := strings.ToUpper(sqlText)
		selfManaged := strings.Contains(upper, "BEGIN TRANSACTION") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS=OFF") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS = OFF")

		if selfManaged {
			if _, err := db.Exec(sqlText); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
			if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
				return fmt.Errorf("record %s: %w", name, err)
			}
			log.Info().Str("migration", name).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store over the profiles table of a migrated db.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, playerID string) (game.Profile, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM profiles WHERE player_id=?`, playerID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Profile{}, ErrNotFound
	}
	if err != nil {
		return game.Profile{}, err
	}

	var p game.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return game.Profile{}, fmt.Errorf("decode profile %s: %w", playerID, err)
	}
	return p, nil
}

func (s *sqliteStore) Save(ctx context.Context, playerID string, p game.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", playerID, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO profiles (player_id, doc, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(player_id) DO UPDATE SET
            doc = excluded.doc,
            updated_at = excluded.updated_at`,
		playerID, string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
