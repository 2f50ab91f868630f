package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

func newTestSimulation(t *testing.T) *Simulation {
	t.Helper()
	m := world.NewMap(12, 12, world.Floor).Apply([]world.MapUpdate{
		{Position: world.C(0, 11), Symbol: world.Wall},
		{Position: world.C(1, 11), Symbol: world.Wall},
	})
	return NewSimulation(newTestState(m, world.C(0, 0)))
}

func TestSimulation_orderValidation(t *testing.T) {
	sim := newTestSimulation(t)

	_, err := sim.OrderDig(world.C(5, 5))
	assert.ErrorIs(t, err, ErrNotWall)
	_, err = sim.OrderFill(world.C(0, 11))
	assert.ErrorIs(t, err, ErrNotFloor)
	_, err = sim.OrderFill(world.C(12, 0))
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = sim.OrderBuild("Castle", world.C(5, 5))
	assert.ErrorIs(t, err, ErrUnknownBuilding)
	_, err = sim.OrderBuild(work.Bedroom, world.C(0, 0))
	assert.ErrorIs(t, err, ErrBuildBlocked, "footprint runs off the map")
	_, err = sim.OrderDemolish(world.C(5, 5))
	assert.ErrorIs(t, err, ErrNoBuilding)
	assert.ErrorIs(t, sim.CancelOrder("nope"), ErrUnknownOrder)

	dig, err := sim.OrderDig(world.C(0, 11))
	require.NoError(t, err)
	_, err = sim.OrderDig(world.C(0, 11))
	assert.ErrorIs(t, err, ErrWorkExists)

	_, err = sim.OrderBuild(work.Bedroom, world.C(5, 5))
	require.NoError(t, err)
	_, err = sim.OrderFill(world.C(6, 6))
	assert.ErrorIs(t, err, ErrWorkExists, "build claims its footprint")

	require.NoError(t, sim.CancelOrder(dig.ID))
	sim.View(func(s *State) {
		assert.Equal(t, 1, s.Queue.Len())
	})
}

func TestSimulation_workTimeOverride(t *testing.T) {
	sim := newTestSimulation(t)
	sim.WorkTime = 2
	o, err := sim.OrderFill(world.C(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, o.Time)
}

func TestSimulation_demolish(t *testing.T) {
	sim := newTestSimulation(t)
	def, _ := work.LookupDef(work.Kitchen)
	b := work.NewBuilding(def, world.C(6, 6))
	sim.View(func(s *State) { s.Buildings = []*work.Building{b} })

	o, err := sim.OrderDemolish(world.C(7, 7))
	require.NoError(t, err)
	assert.Same(t, b, o.Building)
	assert.Equal(t, world.C(6, 6), o.Position)

	_, err = sim.OrderDemolish(world.C(5, 5))
	assert.ErrorIs(t, err, ErrWorkExists)

	for i := 0; i < 40; i++ {
		sim.Step()
	}
	sim.View(func(s *State) {
		assert.Empty(t, s.Buildings)
	})
}

func TestSimulation_eventsAndSubscribers(t *testing.T) {
	sim := newTestSimulation(t)
	id, ch := sim.Subscribe()

	_, err := sim.OrderFill(world.C(4, 4))
	require.NoError(t, err)
	sim.Step()

	e := <-ch
	assert.Equal(t, CategoryWork, e.Category)
	assert.Equal(t, "pending", e.Meta["stage"])
	e = <-ch
	assert.Equal(t, "in_progress", e.Meta["stage"])
	assert.Equal(t, uint64(0), e.Tick)

	assert.Len(t, sim.RecentEvents(10), 2)
	assert.Len(t, sim.RecentEvents(1), 1)
	assert.Equal(t, uint64(1), sim.CurrentTick())

	sim.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestSimulation_hobbitAt(t *testing.T) {
	sim := newTestSimulation(t)
	h, ok := sim.HobbitAt(world.C(0, 0))
	require.True(t, ok)
	assert.Equal(t, "h", h.Name)
	_, ok = sim.HobbitAt(world.C(1, 1))
	assert.False(t, ok)
}

func TestEngine_runAndStop(t *testing.T) {
	eng := NewEngine(1000)
	eng.AutosaveEvery = 5
	ticks := make(chan uint64, 100)
	saves := make(chan uint64, 100)
	eng.OnTick = func(tick uint64) { ticks <- tick }
	eng.OnAutosave = func(tick uint64) { saves <- tick }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	for want := uint64(1); want <= 10; want++ {
		select {
		case got := <-ticks:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("engine did not tick")
		}
	}
	cancel()
	<-done

	assert.False(t, eng.Running())
	assert.Equal(t, uint64(5), <-saves)
	assert.Equal(t, uint64(10), <-saves)
}

func TestEngine_speed(t *testing.T) {
	eng := NewEngine(30)
	assert.Equal(t, 1.0, eng.Speed())
	eng.SetSpeed(-3)
	assert.Equal(t, 0.0, eng.Speed())
	eng.SetSpeed(4)
	assert.Equal(t, 4.0, eng.Speed())
}
