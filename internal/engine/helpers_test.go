package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// testTuning acts on every frame and never wanders, so scenarios are exact.
func testTuning() Tuning {
	return Tuning{
		FramesPerSecond: 30,
		ActEvery:        1,
		RetryEvery:      10,
		WaitTimeout:     30,
		WanderOdds:      0,
	}
}

func hobbitsAt(cells ...world.Cell) []agents.Hobbit {
	hobbits := make([]agents.Hobbit, len(cells))
	for i, c := range cells {
		hobbits[i] = agents.New("h", "h", c)
	}
	return hobbits
}

func newTestState(m *world.Map, cells ...world.Cell) *State {
	return NewState(m, hobbitsAt(cells...), testTuning(), 1)
}

// standStill keeps a hobbit rooted to its cell.
type standStill struct{ actor int }

func (a *standStill) Advance(s *State) Outcome { return outcome(s, a.actor, Continue) }
func (a *standStill) Kind() ActionKind         { return "stand" }
func (a *standStill) Order() *work.Order       { return nil }

func run(s *State, ticks int) *State {
	for i := 0; i < ticks; i++ {
		s = Tick(s)
	}
	return s
}

// requireQueueInvariants checks the three lists are disjoint and that
// every claim is backed by the worker's action.
func requireQueueInvariants(t *testing.T, s *State) {
	t.Helper()
	seen := make(map[*work.Order]int)
	s.Queue.Each(func(o *work.Order, _ work.Stage) { seen[o]++ })
	for o, n := range seen {
		require.Equal(t, 1, n, "order %v appears in %d lists", o, n)
	}

	workers := make(map[int]bool)
	for _, ip := range s.Queue.InProgress {
		require.False(t, workers[ip.Worker], "worker %d has two claims", ip.Worker)
		workers[ip.Worker] = true
		require.Same(t, ip.Order, s.Actions[ip.Worker].Order(), "worker %d action not bound to its claim", ip.Worker)
	}
	for i, a := range s.Actions {
		if a.Order() != nil {
			require.True(t, workers[i], "hobbit %d works on an unclaimed order", i)
		}
	}
}
