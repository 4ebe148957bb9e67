package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// jsonVersion is the document format written by this package.
const jsonVersion = 1

const (
	lockTimeout = 3 * time.Second
	lockRetry   = 50 * time.Millisecond
)

// jsonDocument is the on-disk layout.
type jsonDocument struct {
	Version   int          `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
	Folders   []model.Node `json:"folders"`
}

// JSON stores folders in one JSON document. Every operation holds an
// exclusive lock on "<path>.lock" for its read-modify-write cycle, so
// several processes may share the file. Writes go to a temp file that is
// renamed over the document.
type JSON struct {
	path string
	lock *flock.Flock
	now  func() time.Time
}

// OpenJSON prepares the store; the file is created on the first write.
func OpenJSON(path string) (*JSON, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	return &JSON{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}, nil
}

// Path returns the document path.
func (s *JSON) Path() string { return s.path }

// withLock runs fn while holding the file lock.
func (s *JSON) withLock(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire file lock on %s", s.path)
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

// read loads the document; a missing or empty file is an empty document.
func (s *JSON) read() (*jsonDocument, error) {
	doc := &jsonDocument{Version: jsonVersion}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if doc.Version > jsonVersion {
		return nil, fmt.Errorf("%s has format version %d, newer than supported %d", s.path, doc.Version, jsonVersion)
	}
	return doc, nil
}

// write replaces the document atomically.
func (s *JSON) write(doc *jsonDocument) error {
	doc.Version = jsonVersion
	doc.UpdatedAt = s.now().UTC()
	if doc.Folders == nil {
		doc.Folders = []model.Node{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode folders: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// modify runs a locked read-modify-write cycle.
func (s *JSON) modify(ctx context.Context, fn func(doc *jsonDocument) error) error {
	return s.withLock(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return s.write(doc)
	})
}

// List returns every folder in document order.
func (s *JSON) List(ctx context.Context) ([]model.Node, error) {
	var out []model.Node
	err := s.withLock(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		out = doc.Folders
		return nil
	})
	return out, err
}

// FetchRoots returns the matching top-level folders.
func (s *JSON) FetchRoots(ctx context.Context, titleFilter string) ([]model.Node, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterRoots(recs, titleFilter), nil
}

// Create appends a new folder.
func (s *JSON) Create(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return s.modify(ctx, func(doc *jsonDocument) error {
		for _, f := range doc.Folders {
			if f.ID == n.ID {
				return fmt.Errorf("folder %s already exists", n.ID)
			}
		}
		doc.Folders = append(doc.Folders, n)
		return nil
	})
}

// Update replaces an existing folder.
func (s *JSON) Update(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return s.modify(ctx, func(doc *jsonDocument) error {
		for i, f := range doc.Folders {
			if f.ID == n.ID {
				doc.Folders[i] = n
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrNotFound, n.ID)
	})
}

// SaveAll upserts every folder in one document write.
func (s *JSON) SaveAll(ctx context.Context, nodes []model.Node) error {
	if err := validateAll(nodes); err != nil {
		return err
	}
	return s.modify(ctx, func(doc *jsonDocument) error {
		index := make(map[string]int, len(doc.Folders))
		for i, f := range doc.Folders {
			index[f.ID] = i
		}
		for _, n := range nodes {
			if i, ok := index[n.ID]; ok {
				doc.Folders[i] = n
				continue
			}
			index[n.ID] = len(doc.Folders)
			doc.Folders = append(doc.Folders, n)
		}
		return nil
	})
}

// Delete removes the folder and its subtree.
func (s *JSON) Delete(ctx context.Context, id string) error {
	return s.modify(ctx, func(doc *jsonDocument) error {
		found := false
		for _, f := range doc.Folders {
			if f.ID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		gone := make(map[string]bool)
		for _, d := range subtree(doc.Folders, id) {
			gone[d] = true
		}
		kept := doc.Folders[:0]
		for _, f := range doc.Folders {
			if !gone[f.ID] {
				kept = append(kept, f)
			}
		}
		doc.Folders = kept
		return nil
	})
}

// Close releases the lock handle.
func (s *JSON) Close() error {
	return s.lock.Close()
}
