package datasource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanderheijden86/accordion/pkg/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS folders (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	is_expanded BOOLEAN NOT NULL DEFAULT FALSE,
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL,
	modified_at TIMESTAMPTZ NOT NULL,
	parent_id   TEXT REFERENCES folders(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED
);
CREATE INDEX IF NOT EXISTS folders_parent ON folders(parent_id);
`

const postgresUpsert = `
INSERT INTO folders (` + folderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	is_expanded = EXCLUDED.is_expanded,
	sort_order = EXCLUDED.sort_order,
	created_at = EXCLUDED.created_at,
	modified_at = EXCLUDED.modified_at,
	parent_id = EXCLUDED.parent_id`

// Postgres stores folders in a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	// Simple protocol avoids statement cache trouble behind poolers.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

// List reads every folder.
func (s *Postgres) List(ctx context.Context) ([]model.Node, error) {
	return s.query(ctx, `SELECT `+folderColumns+` FROM folders ORDER BY sort_order, created_at, id`)
}

// FetchRoots reads the top-level folders whose title contains titleFilter.
func (s *Postgres) FetchRoots(ctx context.Context, titleFilter string) ([]model.Node, error) {
	recs, err := s.query(ctx, `SELECT `+folderColumns+` FROM folders WHERE parent_id IS NULL ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	return filterRoots(recs, titleFilter), nil
}

func (s *Postgres) query(ctx context.Context, q string, args ...any) ([]model.Node, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Node, error) {
		var n model.Node
		var parentID *string
		err := row.Scan(&n.ID, &n.Title, &n.IsExpanded, &n.Order, &n.CreatedAt, &n.ModifiedAt, &parentID)
		if parentID != nil {
			n.ParentID = *parentID
		}
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}
	return recs, nil
}

// Create inserts a new folder.
func (s *Postgres) Create(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO folders (`+folderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`, postgresArgs(n)...)
	if err != nil {
		return fmt.Errorf("insert folder %s: %w", n.ID, err)
	}
	return nil
}

// Update replaces an existing folder.
func (s *Postgres) Update(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE folders SET title = $2, is_expanded = $3, sort_order = $4, created_at = $5, modified_at = $6, parent_id = $7
		WHERE id = $1`, postgresArgs(n)...)
	if err != nil {
		return fmt.Errorf("update folder %s: %w", n.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, n.ID)
	}
	return nil
}

// SaveAll upserts the folders in one transaction.
func (s *Postgres) SaveAll(ctx context.Context, nodes []model.Node) error {
	if err := validateAll(nodes); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, n := range nodes {
			batch.Queue(postgresUpsert, postgresArgs(n)...)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// Delete removes the folder and its subtree.
func (s *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		WITH RECURSIVE sub(id) AS (
			SELECT id FROM folders WHERE id = $1
			UNION
			SELECT f.id FROM folders f JOIN sub ON f.parent_id = sub.id
		)
		DELETE FROM folders WHERE id IN (SELECT id FROM sub)`, id)
	if err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Truncate empties the table. Used by integration tests.
func (s *Postgres) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE folders`)
	return err
}

func postgresArgs(n model.Node) []any {
	var parent *string
	if n.ParentID != "" {
		p := n.ParentID
		parent = &p
	}
	return []any{n.ID, n.Title, n.IsExpanded, n.Order, n.CreatedAt, n.ModifiedAt, parent}
}
