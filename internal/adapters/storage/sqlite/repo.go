package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/ideas/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// activeIndexKey is the settings row holding the last selected index.
const activeIndexKey = "active_index"

// Repository stores ideas in a sqlite database.
type Repository struct {
	db    *sql.DB
	idGen func() string
	clock func() time.Time
}

// Open opens the database at path, creating it and its directory when missing.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, idGen: uuid.NewString, clock: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ideas (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_position ON ideas(position);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadIdeas lists ideas in display order.
func (r *Repository) LoadIdeas(ctx context.Context) ([]domain.Idea, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, description
		FROM ideas
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Idea{}
	for rows.Next() {
		var idea domain.Idea
		if err := rows.Scan(&idea.Title, &idea.Description); err != nil {
			return nil, err
		}
		out = append(out, idea)
	}
	return out, rows.Err()
}

// SaveIdeas replaces every stored idea with the given list in one transaction.
func (r *Repository) SaveIdeas(ctx context.Context, ideas []domain.Idea) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save ideas: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM ideas`); err != nil {
		return fmt.Errorf("clear ideas: %w", err)
	}
	now := ts(r.clock())
	for pos, idea := range ideas {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO ideas(id, position, title, description, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, r.idGen(), pos, idea.Title, idea.Description, now); err != nil {
			return fmt.Errorf("insert idea %d: %w", pos, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save ideas: %w", err)
	}
	return nil
}

// LoadActiveIndex returns the stored selection, or 0 when none was saved.
func (r *Repository) LoadActiveIndex(ctx context.Context) (int, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, activeIndexKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("decode %s %q: %w", activeIndexKey, raw, domain.ErrMalformedPayload)
	}
	return index, nil
}

// SaveActiveIndex upserts the selection.
func (r *Repository) SaveActiveIndex(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("save index %d: %w", index, domain.ErrInvalidPosition)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, activeIndexKey, strconv.Itoa(index))
	return err
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
