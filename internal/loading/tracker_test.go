package loading

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_StartsIdle(t *testing.T) {
	tr := New()
	assert.False(t, tr.Active())
	assert.Equal(t, 0, tr.InFlight())
	assert.Empty(t, tr.Operations())
}

func TestTracker_OverlappingRequestsKeepBusyUntilLastEnds(t *testing.T) {
	tr := New()

	first := tr.Begin("GET /species")
	second := tr.Begin("GET /bones")
	assert.Equal(t, 2, tr.InFlight())

	// The first response back must not clear the indicator.
	first.End()
	assert.True(t, tr.Active())
	assert.False(t, tr.ActiveFor("GET /species"))
	assert.True(t, tr.ActiveFor("GET /bones"))

	second.End()
	assert.False(t, tr.Active())
}

func TestTracker_EndIsIdempotent(t *testing.T) {
	tr := New()
	a := tr.Begin("op")
	b := tr.Begin("op")

	a.End()
	a.End()
	a.End()

	assert.Equal(t, 1, tr.InFlight())
	assert.Equal(t, map[string]int{"op": 1}, tr.Operations())

	b.End()
	assert.Equal(t, 0, tr.InFlight())
}

func TestTracker_NilScopeEndIsSafe(t *testing.T) {
	var s *Scope
	assert.NotPanics(t, func() { s.End() })
}

func TestTracker_ScopesHaveDistinctIDs(t *testing.T) {
	tr := New()
	a := tr.Begin("op")
	b := tr.Begin("op")
	defer a.End()
	defer b.End()

	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "op", a.Operation)
}

func TestTracker_SubscribeSeesOnlyTransitions(t *testing.T) {
	tr := New()
	var mu sync.Mutex
	var events []bool
	tr.Subscribe(func(busy bool) {
		mu.Lock()
		events = append(events, busy)
		mu.Unlock()
	})
	tr.Subscribe(nil)

	a := tr.Begin("a")
	b := tr.Begin("b")
	a.End()
	b.End()
	c := tr.Begin("c")
	c.End()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false, true, false}, events)
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tr := New()
	const workers = 50
	const perWorker = 100

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				s := tr.Begin("op")
				s.End()
			}
		}()
	}
	wg.Wait()

	assert.False(t, tr.Active())
	assert.Empty(t, tr.Operations())
}
