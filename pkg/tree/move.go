package tree

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// ErrIndexOutOfRange is returned by Move for positions outside the list.
var ErrIndexOutOfRange = errors.New("index out of range")

// Move takes the row at from out of the visible list and inserts it at to.
// Every row then gets its new position as its manual order, so the order is
// one sequence across the whole visible list rather than per sibling group.
// dir is the direction the list is displayed in; see Renumber.
//
// The input list is left untouched. Move returns the reordered list and
// copies of the records whose order changed; callers persist those.
func Move(list []*Node, from, to int, dir model.SortDirection) ([]*Node, []model.Node, error) {
	if from < 0 || from >= len(list) {
		return nil, nil, fmt.Errorf("move from %d: %w", from, ErrIndexOutOfRange)
	}
	if to < 0 || to >= len(list) {
		return nil, nil, fmt.Errorf("move to %d: %w", to, ErrIndexOutOfRange)
	}

	moved := make([]*Node, 0, len(list))
	moved = append(moved, list[:from]...)
	moved = append(moved, list[from+1:]...)
	item := list[from]
	moved = append(moved[:to], append([]*Node{item}, moved[to:]...)...)

	return moved, Renumber(moved, dir), nil
}

// Renumber assigns each row its position as manual order and returns copies
// of the records that changed. A list displayed descending is numbered from
// the bottom (n-1 for the first row down to 0 for the last), so sorting the
// saved orders in the same direction reproduces the list.
func Renumber(list []*Node, dir model.SortDirection) []model.Node {
	var changed []model.Node
	for i, n := range list {
		if n == nil || n.Folder == nil {
			continue
		}
		order := i
		if dir == model.SortDescending {
			order = len(list) - 1 - i
		}
		if n.Folder.Order == order {
			continue
		}
		rec := *n.Folder
		rec.Order = order
		changed = append(changed, rec)
	}
	return changed
}
