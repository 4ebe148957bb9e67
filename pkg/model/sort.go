package model

import (
	"fmt"
	"strings"
)

// SortKey selects the field the folder list is ordered by.
type SortKey int

const (
	SortManual   SortKey = iota // User-defined order (drag to reorder)
	SortCreated                 // Creation date
	SortTitle                   // Title, case-insensitive
	SortModified                // Last modification date
	NumSortKeys                 // Sentinel: total number of sort keys
)

// String returns the persisted name of the key.
func (k SortKey) String() string {
	switch k {
	case SortManual:
		return "manual"
	case SortCreated:
		return "created"
	case SortTitle:
		return "title"
	case SortModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Label returns a human-readable label for menus.
func (k SortKey) Label() string {
	switch k {
	case SortManual:
		return "Manual"
	case SortCreated:
		return "Created"
	case SortTitle:
		return "Title"
	case SortModified:
		return "Modified"
	default:
		return "Unknown"
	}
}

// Next returns the key after k, wrapping around.
func (k SortKey) Next() SortKey {
	return (k + 1) % NumSortKeys
}

// ParseSortKey accepts the persisted names plus a few aliases.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", "order", "":
		return SortManual, nil
	case "created", "created_at", "createdat":
		return SortCreated, nil
	case "title", "name":
		return SortTitle, nil
	case "modified", "modified_at", "updated", "currentdate":
		return SortModified, nil
	default:
		return SortManual, fmt.Errorf("unknown sort key %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so config files carry names.
func (k SortKey) MarshalText() ([]byte, error) {
	if k < 0 || k >= NumSortKeys {
		return nil, fmt.Errorf("invalid sort key %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SortKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSortKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SortDirection is ascending or descending.
type SortDirection int

const (
	SortAscending  SortDirection = iota // ▲ ascending
	SortDescending                      // ▼ descending
)

// DirectionOf maps the persisted boolean flag to a direction.
func DirectionOf(ascending bool) SortDirection {
	if ascending {
		return SortAscending
	}
	return SortDescending
}

// String returns a human-readable label for the sort direction.
func (d SortDirection) String() string {
	if d == SortAscending {
		return "Ascending"
	}
	return "Descending"
}

// Indicator returns the arrow indicator for the sort direction.
func (d SortDirection) Indicator() string {
	if d == SortAscending {
		return "▲"
	}
	return "▼"
}

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}
