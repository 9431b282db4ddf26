// Package loading tracks in-flight requests so that a busy indicator stays on
// until the last overlapping request has finished.
package loading

import (
	"sync"

	"github.com/google/uuid"
)

// Tracker is a reference-counted in-flight counter. The global count drives
// the busy indicator; per-operation counts let callers ask about one logical
// operation without being confused by unrelated traffic.
//
// A Tracker is safe for concurrent use. The zero value is not usable; call New.
type Tracker struct {
	mu          sync.Mutex
	total       int
	byOp        map[string]int
	scopes      map[string]string // scope ID -> operation
	subscribers []func(busy bool)
}

// New returns an idle Tracker.
func New() *Tracker {
	return &Tracker{
		byOp:   make(map[string]int),
		scopes: make(map[string]string),
	}
}

// Scope is one started unit of work. End must be called exactly once; extra
// calls are ignored.
type Scope struct {
	ID        string
	Operation string

	t    *Tracker
	once sync.Once
}

// End releases the scope.
func (s *Scope) End() {
	if s == nil || s.t == nil {
		return
	}
	s.once.Do(func() { s.t.end(s) })
}

// Begin opens a scope for operation and marks the tracker busy.
func (t *Tracker) Begin(operation string) *Scope {
	s := &Scope{
		ID:        uuid.NewString(),
		Operation: operation,
		t:         t,
	}

	t.mu.Lock()
	t.total++
	t.byOp[operation]++
	t.scopes[s.ID] = operation
	notify := t.total == 1
	subs := t.snapshotSubscribersLocked(notify)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(true)
	}
	return s
}

func (t *Tracker) end(s *Scope) {
	t.mu.Lock()
	if _, ok := t.scopes[s.ID]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.scopes, s.ID)
	t.total--
	if n := t.byOp[s.Operation] - 1; n > 0 {
		t.byOp[s.Operation] = n
	} else {
		delete(t.byOp, s.Operation)
	}
	notify := t.total == 0
	subs := t.snapshotSubscribersLocked(notify)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(false)
	}
}

func (t *Tracker) snapshotSubscribersLocked(notify bool) []func(bool) {
	if !notify || len(t.subscribers) == 0 {
		return nil
	}
	out := make([]func(bool), len(t.subscribers))
	copy(out, t.subscribers)
	return out
}

// Active reports whether any scope is open.
func (t *Tracker) Active() bool {
	return t.InFlight() > 0
}

// InFlight returns the number of open scopes.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// ActiveFor reports whether a scope for operation is open.
func (t *Tracker) ActiveFor(operation string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byOp[operation] > 0
}

// Operations returns the in-flight count per operation.
func (t *Tracker) Operations() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.byOp))
	for op, n := range t.byOp {
		out[op] = n
	}
	return out
}

// Subscribe registers fn to be called when the tracker turns busy (true) or
// idle (false). Callbacks run outside the tracker lock, on the goroutine that
// caused the transition.
func (t *Tracker) Subscribe(fn func(busy bool)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.subscribers = append(t.subscribers, fn)
	t.mu.Unlock()
}
