// Package datasource provides the folder stores and detects which one a
// DSN refers to: SQLite databases, JSON documents, PostgreSQL servers and
// an in-memory store for tests and demos.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// ErrNotFound is returned by Update and Delete for unknown ids.
var ErrNotFound = errors.New("folder not found")

// Store is the method set every backend implements. It matches the
// accordion.Store interface.
type Store interface {
	List(ctx context.Context) ([]model.Node, error)
	FetchRoots(ctx context.Context, titleFilter string) ([]model.Node, error)
	Create(ctx context.Context, n model.Node) error
	Update(ctx context.Context, n model.Node) error
	SaveAll(ctx context.Context, nodes []model.Node) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database file
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is a JSON document file
	SourceTypeJSON SourceType = "json"
	// SourceTypePostgres is a PostgreSQL connection string
	SourceTypePostgres SourceType = "postgres"
	// SourceTypeMemory is the in-process store
	SourceTypeMemory SourceType = "memory"
)

// DataSource describes where folders are stored.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute file path, or the connection string for postgres
	Path string `json:"path"`
	// ModTime is the last modification time of file sources
	ModTime time.Time `json:"mod_time,omitempty"`
	// Size is the file size in bytes
	Size int64 `json:"size,omitempty"`
	// Valid indicates whether the source could be opened and read
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// FolderCount is the number of folders in the source (set during validation)
	FolderCount int `json:"folder_count"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	if s.Type == SourceTypePostgres || s.Type == SourceTypeMemory {
		return fmt.Sprintf("%s (%s, folders=%d, %s)", redact(s.Path), s.Type, s.FolderCount, status)
	}
	return fmt.Sprintf("%s (%s, mod=%s, size=%d, folders=%d, %s)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size, s.FolderCount, status)
}

// Watchable reports whether changes to the source show up as file events.
func (s DataSource) Watchable() bool {
	return s.Type == SourceTypeSQLite || s.Type == SourceTypeJSON
}

// Detect works out the source type from a DSN without touching it.
//
//	""  memory:              memory
//	postgres://  postgresql://  postgres
//	sqlite://path  *.db  *.sqlite  *.sqlite3
//	json://path  *.json
func Detect(dsn string) (DataSource, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "" || dsn == "memory:" || dsn == "memory://":
		return DataSource{Type: SourceTypeMemory, Path: "memory:"}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DataSource{Type: SourceTypePostgres, Path: dsn}, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return fileSource(SourceTypeSQLite, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "json://"):
		return fileSource(SourceTypeJSON, strings.TrimPrefix(dsn, "json://"))
	}

	switch strings.ToLower(filepath.Ext(dsn)) {
	case ".db", ".sqlite", ".sqlite3":
		return fileSource(SourceTypeSQLite, dsn)
	case ".json":
		return fileSource(SourceTypeJSON, dsn)
	}
	return DataSource{}, fmt.Errorf("cannot tell the store type of %q (use a .db or .json file, or a postgres:// URL)", dsn)
}

func fileSource(t SourceType, path string) (DataSource, error) {
	if path == "" {
		return DataSource{}, fmt.Errorf("%s store needs a file path", t)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	src := DataSource{Type: t, Path: abs}
	if info, err := os.Stat(abs); err == nil {
		src.ModTime = info.ModTime()
		src.Size = info.Size()
	}
	return src, nil
}

// Open detects the source type and opens the matching store. File stores
// are created on first use.
func Open(ctx context.Context, dsn string) (Store, error) {
	src, err := Detect(dsn)
	if err != nil {
		return nil, err
	}
	return OpenSource(ctx, src)
}

// OpenSource opens the store for an already detected source.
func OpenSource(ctx context.Context, src DataSource) (Store, error) {
	switch src.Type {
	case SourceTypeMemory:
		return NewMemory(), nil
	case SourceTypeSQLite:
		s, err := OpenSQLite(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", src.Path, err)
		}
		return s, nil
	case SourceTypeJSON:
		return OpenJSON(src.Path)
	case SourceTypePostgres:
		s, err := OpenPostgres(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres source %s: %w", redact(src.Path), err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
}

// Describe detects and validates a source: it is opened, listed and
// closed, and the outcome recorded on the returned DataSource.
func Describe(ctx context.Context, dsn string) (DataSource, error) {
	src, err := Detect(dsn)
	if err != nil {
		return src, err
	}
	ValidateSource(ctx, &src)
	return src, nil
}

// ValidateSource opens the source read-through and fills Valid,
// ValidationError and FolderCount.
func ValidateSource(ctx context.Context, src *DataSource) {
	src.Valid = false
	src.ValidationError = ""
	store, err := OpenSource(ctx, *src)
	if err != nil {
		src.ValidationError = err.Error()
		return
	}
	defer store.Close()

	recs, err := store.List(ctx)
	if err != nil {
		src.ValidationError = err.Error()
		return
	}
	for _, r := range recs {
		if err := r.Validate(); err != nil {
			src.ValidationError = err.Error()
			src.FolderCount = len(recs)
			return
		}
	}
	src.FolderCount = len(recs)
	src.Valid = true
}

// redact hides the password in a connection URL.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if user, _, ok := strings.Cut(creds, ":"); ok {
		return dsn[:scheme+3] + user + ":***" + dsn[at:]
	}
	return dsn
}
