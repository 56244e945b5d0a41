package model

// Move relocates the element at index from to index to, shifting the elements
// in between. Indexes outside the slice leave it untouched. The input slice is
// not modified; a new slice is returned.
func Move[T any](items []T, from, to int) []T {
	out := append(make([]T, 0, len(items)), items...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}
