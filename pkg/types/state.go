package types

// StoreState is the client-side mirror of the last server data a store
// received plus the status of its requests.
//
// Loading is true only while at least one action of the owning store is in
// flight. Err is cleared when an action starts and set only when it fails.
type StoreState[T any] struct {
	Current    *T
	List       []T
	Pagination *Pagination
	Total      int
	Loading    bool
	Err        error
}

// Clone returns a copy that shares no slices or pointers with s.
func (s StoreState[T]) Clone() StoreState[T] {
	out := StoreState[T]{
		Total:   s.Total,
		Loading: s.Loading,
		Err:     s.Err,
	}
	if s.Current != nil {
		cur := cloneValue(*s.Current)
		out.Current = &cur
	}
	if s.List != nil {
		out.List = make([]T, len(s.List))
		for i, v := range s.List {
			out.List[i] = cloneValue(v)
		}
	}
	if s.Pagination != nil {
		p := s.Pagination.Clone()
		out.Pagination = &p
	}
	return out
}

// cloneValue deep-copies v when its type knows how.
func cloneValue[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

// PersistedError stands in for an error restored from a snapshot; only the
// message survives serialization.
type PersistedError struct {
	Message string
}

func (e *PersistedError) Error() string {
	return e.Message
}
