// Package sqlitemigrate applies embedded, forward-only SQL migrations.
//
// Each file is applied once, in lexical order, inside its own transaction.
// The applied set records a checksum of the Up section so an edited,
// already-applied migration is reported instead of silently skipped.
package sqlitemigrate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

// ErrChecksumMismatch indicates an applied migration whose file changed.
var ErrChecksumMismatch = errors.New("applied migration was modified")

// Migration is one embedded SQL file.
type Migration struct {
	Name     string
	UpSQL    string
	Checksum string
}

// Load reads the .sql files under root in lexical order.
func Load(fsys fs.FS, root string) ([]Migration, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		full := path.Join(root, name)
		content, err := fs.ReadFile(fsys, full)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		up := UpSection(string(content))
		sum := sha256.Sum256([]byte(up))
		key := name
		if root != "." {
			key = full
		}
		migrations = append(migrations, Migration{Name: key, UpSQL: up, Checksum: hex.EncodeToString(sum[:])})
	}
	return migrations, nil
}

// ApplyMigrations applies every migration under root that has not been
// applied yet.
func ApplyMigrations(ctx context.Context, sqlDB *sql.DB, fsys fs.FS, root string) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}
	migrations, err := Load(fsys, root)
	if err != nil {
		return err
	}
	if _, err := sqlDB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name TEXT PRIMARY KEY,
    checksum TEXT NOT NULL,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	applied, err := appliedChecksums(ctx, sqlDB)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if sum, ok := applied[m.Name]; ok {
			if sum != m.Checksum {
				return fmt.Errorf("%w: %s", ErrChecksumMismatch, m.Name)
			}
			continue
		}
		if strings.TrimSpace(m.UpSQL) == "" {
			continue
		}
		if err := apply(ctx, sqlDB, m); err != nil {
			return err
		}
	}
	return nil
}

// Applied returns the names of applied migrations in order.
func Applied(ctx context.Context, sqlDB *sql.DB) ([]string, error) {
	applied, err := appliedChecksums(ctx, sqlDB)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(applied))
	for name := range applied {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// UpSection returns the SQL between the Up and Down markers. Files without
// markers are treated as all-Up.
func UpSection(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	body := content[upIdx+len(upMarker):]
	if downIdx := strings.Index(body, downMarker); downIdx != -1 {
		body = body[:downIdx]
	}
	return body
}

func apply(ctx context.Context, sqlDB *sql.DB, m Migration) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+migrationTable+" (name, checksum, applied_at) VALUES (?, ?, ?)",
		m.Name, m.Checksum, time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Name, err)
	}
	return nil
}

func appliedChecksums(ctx context.Context, sqlDB *sql.DB) (map[string]string, error) {
	rows, err := sqlDB.QueryContext(ctx, "SELECT name, checksum FROM "+migrationTable)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()
	applied := make(map[string]string)
	for rows.Next() {
		var name, sum string
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[name] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return applied, nil
}
