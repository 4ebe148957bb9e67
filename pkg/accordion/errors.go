package accordion

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreRead is returned when the store could not be read. The model
	// then shows an empty list until the next successful reload.
	ErrStoreRead = errors.New("store read failed")
	// ErrStoreWrite is returned when a write failed. The model has already
	// resynchronized from the store when the caller sees it.
	ErrStoreWrite = errors.New("store write failed")
	// ErrNotFound is returned for ids that are not in the loaded forest.
	ErrNotFound = errors.New("folder not found")
	// ErrReorderDisabled is returned by Move unless the list is in manual
	// order with no search active.
	ErrReorderDisabled = errors.New("reordering requires manual sort and no active search")
	// ErrDeleteDisabled is returned by Delete unless the list is in manual order.
	ErrDeleteDisabled = errors.New("deleting requires manual sort")
	// ErrForcedOpen is returned by ToggleExpand for a folder the active
	// search keeps open. Nothing is written.
	ErrForcedOpen = errors.New("folder is held open by the search; clear the search to close it")
)

// readErr wraps a store read failure so both ErrStoreRead and the cause
// match errors.Is.
func readErr(op string, cause error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreRead, cause))
}

func writeErr(op string, cause error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreWrite, cause))
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
