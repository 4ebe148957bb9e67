// Package model holds the records shared by the tree, the stores and the
// front ends.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTitle is the title given to folders created without one.
const DefaultTitle = "New Folder"

// Node is one folder record as persisted by a store.
//
// Children are not stored on the record. The parent/child relation lives
// only in ParentID; the tree package derives the children index from it.
type Node struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	IsExpanded bool      `json:"is_expanded"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	ParentID   string    `json:"parent_id,omitempty"` // empty for roots
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == ""
}

// Validate checks the fields every store relies on.
func (n Node) Validate() error {
	var errs []error
	if strings.TrimSpace(n.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if n.ParentID != "" && n.ParentID == n.ID {
		errs = append(errs, fmt.Errorf("node %s cannot be its own parent", n.ID))
	}
	if n.Order < 0 {
		errs = append(errs, fmt.Errorf("order must be non-negative, got %d", n.Order))
	}
	return errors.Join(errs...)
}

// Row is the render contract handed to list front ends.
type Row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Level       int    `json:"level"`
	HasChildren bool   `json:"has_children"`
	IsExpanded  bool   `json:"is_expanded"`
}
