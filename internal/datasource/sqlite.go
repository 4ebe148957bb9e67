package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/accordion/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS folders (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	is_expanded INTEGER NOT NULL DEFAULT 0,
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	modified_at TEXT NOT NULL,
	parent_id   TEXT REFERENCES folders(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED
);
CREATE INDEX IF NOT EXISTS folders_parent ON folders(parent_id);
`

const folderColumns = `id, title, is_expanded, sort_order, created_at, modified_at, parent_id`

// sqliteUpsert inserts or replaces one folder; parents may arrive after
// their children inside a transaction because the foreign key is deferred.
const sqliteUpsert = `
INSERT INTO folders (` + folderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	is_expanded = excluded.is_expanded,
	sort_order = excluded.sort_order,
	created_at = excluded.created_at,
	modified_at = excluded.modified_at,
	parent_id = excluded.parent_id`

// subtreeDelete removes a folder and everything below it. UNION (not
// UNION ALL) stops on parent loops.
const subtreeDelete = `
WITH RECURSIVE sub(id) AS (
	SELECT id FROM folders WHERE id = ?
	UNION
	SELECT f.id FROM folders f JOIN sub ON f.parent_id = sub.id
)
DELETE FROM folders WHERE id IN (SELECT id FROM sub)`

// SQLite stores folders in a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

// Close closes the database connection
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// List reads every folder.
func (s *SQLite) List(ctx context.Context) ([]model.Node, error) {
	return s.query(ctx, `SELECT `+folderColumns+` FROM folders ORDER BY sort_order, created_at, id`)
}

// FetchRoots reads the top-level folders whose title contains titleFilter.
func (s *SQLite) FetchRoots(ctx context.Context, titleFilter string) ([]model.Node, error) {
	recs, err := s.query(ctx, `SELECT `+folderColumns+` FROM folders WHERE parent_id IS NULL ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	// Title matching folds Unicode case, which SQLite's LOWER does not.
	return filterRoots(recs, titleFilter), nil
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]model.Node, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []model.Node
	for rows.Next() {
		var n model.Node
		var expanded int
		var createdAt, modifiedAt string
		var parentID sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &expanded, &n.Order, &createdAt, &modifiedAt, &parentID); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		n.IsExpanded = expanded != 0
		n.CreatedAt = parseTime(createdAt)
		n.ModifiedAt = parseTime(modifiedAt)
		if parentID.Valid {
			n.ParentID = parentID.String
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}
	return out, nil
}

// Create inserts a new folder.
func (s *SQLite) Create(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO folders (`+folderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`, sqliteArgs(n)...)
	if err != nil {
		return fmt.Errorf("insert folder %s: %w", n.ID, err)
	}
	return nil
}

// Update replaces an existing folder.
func (s *SQLite) Update(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	args := sqliteArgs(n)
	res, err := s.db.ExecContext(ctx, `
		UPDATE folders SET title = ?, is_expanded = ?, sort_order = ?, created_at = ?, modified_at = ?, parent_id = ?
		WHERE id = ?`, append(args[1:], args[0])...)
	if err != nil {
		return fmt.Errorf("update folder %s: %w", n.ID, err)
	}
	return requireRow(res, n.ID)
}

// SaveAll upserts the folders in one transaction.
func (s *SQLite) SaveAll(ctx context.Context, nodes []model.Node) error {
	if err := validateAll(nodes); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx, sqliteArgs(n)...); err != nil {
			return fmt.Errorf("save folder %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes the folder and its subtree.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, subtreeDelete, id)
	if err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	return requireRow(res, id)
}

func sqliteArgs(n model.Node) []any {
	expanded := 0
	if n.IsExpanded {
		expanded = 1
	}
	var parent any
	if n.ParentID != "" {
		parent = n.ParentID
	}
	return []any{n.ID, n.Title, expanded, n.Order, formatTime(n.CreatedAt), formatTime(n.ModifiedAt), parent}
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsNotFound reports whether err means the folder does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
