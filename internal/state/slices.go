package state

func snapshot[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func find[T any](list []T, match func(T) bool) (T, bool) {
	for _, v := range list {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// replace returns a copy of list with the element sharing v's id swapped for v.
func replace[T any](list []T, v T, id func(T) string) ([]T, bool) {
	want := id(v)
	for i := range list {
		if id(list[i]) == want {
			next := snapshot(list)
			next[i] = v
			return next, true
		}
	}
	return nil, false
}

// remove returns a copy of list without the element with the given id.
func remove[T any](list []T, target string, id func(T) string) ([]T, T, bool) {
	for i := range list {
		if id(list[i]) == target {
			next := make([]T, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			return next, list[i], true
		}
	}
	var zero T
	return nil, zero, false
}
