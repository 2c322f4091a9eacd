package feedstore

import "github.com/mholloway/medley/internal/feed"

// Move returns a new slice with the element at dragIndex removed and
// re-inserted at hoverIndex. The input is not modified. Returns false when
// either index is out of range, in which case the caller should treat the
// operation as a no-op.
//
// Move(0, 2) on [a b c d] yields [b c a d].
func Move(items []feed.Item, dragIndex, hoverIndex int) ([]feed.Item, bool) {
	n := len(items)
	if dragIndex < 0 || dragIndex >= n || hoverIndex < 0 || hoverIndex >= n {
		return nil, false
	}

	out := make([]feed.Item, 0, n)
	out = append(out, items[:dragIndex]...)
	out = append(out, items[dragIndex+1:]...)

	dragged := items[dragIndex]
	out = append(out[:hoverIndex], append([]feed.Item{dragged}, out[hoverIndex:]...)...)
	return out, true
}
