package accordion

import (
	"context"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// Store is the persistent owner of folder records. The model never keeps
// state the store does not have; after every write it reloads.
//
// Implementations live in internal/datasource.
type Store interface {
	// List returns every record.
	List(ctx context.Context) ([]model.Node, error)
	// FetchRoots returns the records without a parent whose title contains
	// titleFilter (case-insensitive). An empty filter returns all roots.
	FetchRoots(ctx context.Context, titleFilter string) ([]model.Node, error)
	// Create inserts a new record.
	Create(ctx context.Context, n model.Node) error
	// Update replaces an existing record.
	Update(ctx context.Context, n model.Node) error
	// SaveAll inserts or replaces every record in one all-or-nothing write.
	SaveAll(ctx context.Context, nodes []model.Node) error
	// Delete removes the record and its whole subtree.
	Delete(ctx context.Context, id string) error
	// Close releases the store.
	Close() error
}
