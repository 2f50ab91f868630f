package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// step advances one action and writes the hobbit back, as the tick does.
func step(s *State, a Action) Result {
	out := a.Advance(s)
	s.Hobbits[0] = out.Hobbit
	return out.Result
}

func TestWalkAction_cancelsWhenBlocked(t *testing.T) {
	s := newTestState(world.NewMap(5, 1, world.Floor), world.C(0, 0))
	walk := NewWalkAction(0, world.Path{world.C(1, 0), world.C(2, 0)})

	assert.Equal(t, Continue, step(s, walk))
	s.Map = s.Map.Apply([]world.MapUpdate{{Position: world.C(2, 0), Symbol: world.Wall}})
	assert.Equal(t, Cancel, step(s, walk))
	assert.Equal(t, world.C(1, 0), s.Hobbits[0].Position)
}

func TestGoToAction_replansAroundNewWall(t *testing.T) {
	s := newTestState(world.NewMap(5, 3, world.Floor), world.C(0, 1))
	goTo := NewGoToAction(0, world.C(4, 1))

	require.Equal(t, Continue, step(s, goTo))
	s.Map = s.Map.Apply([]world.MapUpdate{{Position: world.C(2, 1), Symbol: world.Wall}})

	result := Continue
	for i := 0; i < 20 && result == Continue; i++ {
		result = step(s, goTo)
	}
	assert.Equal(t, Complete, result)
	assert.Equal(t, world.C(4, 1), s.Hobbits[0].Position)
}

func TestGoToAction_cancelsWhenUnreachable(t *testing.T) {
	m, err := world.ParseMap([]string{" █ "})
	require.NoError(t, err)
	s := newTestState(m, world.C(0, 0))
	assert.Equal(t, Cancel, step(s, NewGoToAction(0, world.C(2, 0))))
}

func TestGoToAdjacentAction_triesNeighborsInOrder(t *testing.T) {
	m, err := world.ParseMap([]string{
		"     ",
		"  █  ",
		"     ",
	})
	require.NoError(t, err)
	s := newTestState(m, world.C(4, 2))
	goTo := NewGoToAdjacentAction(0, world.C(2, 1))

	result := Continue
	for i := 0; i < 20 && result == Continue; i++ {
		result = step(s, goTo)
	}
	assert.Equal(t, Complete, result)
	assert.Equal(t, world.C(2, 0), s.Hobbits[0].Position, "up is tried first")
}

func TestIdleAction(t *testing.T) {
	s := newTestState(world.NewMap(3, 3, world.Floor), world.C(1, 1))
	idle := NewIdleAction(0)
	assert.Equal(t, Continue, step(s, idle))
	assert.NotEmpty(t, s.Hobbits[0].Thoughts)
	assert.Equal(t, world.C(1, 1), s.Hobbits[0].Position, "wandering disabled")

	s.Tuning.WanderOdds = 1
	assert.Equal(t, Continue, step(s, idle))
	assert.Equal(t, 1, s.Hobbits[0].Position.Distance(world.C(1, 1)))
}

func TestWorkAction_cancelsOnceConditionFails(t *testing.T) {
	m := world.NewMap(3, 3, world.Floor).Apply([]world.MapUpdate{{Position: world.C(1, 1), Symbol: world.Wall}})
	s := newTestState(m, world.C(1, 0))
	act := NewWorkAction(0, work.Dig(world.C(1, 1)), 5)

	assert.Equal(t, Continue, step(s, act)) // already adjacent
	assert.Equal(t, Continue, step(s, act))
	assert.Equal(t, 9, act.Remaining())

	s.Map = s.Map.Apply([]world.MapUpdate{{Position: world.C(1, 1), Symbol: world.Floor}})
	assert.Equal(t, Cancel, step(s, act))
}

func TestClock_next(t *testing.T) {
	var c Clock
	for i := 0; i < 30; i++ {
		c = c.Next(30)
	}
	assert.Equal(t, Clock{Ticks: 30, Time: 1, Frame: 0, Anim: 1}, c)

	c = Clock{Time: timeWrap - 1, Frame: 29}.Next(30)
	assert.Equal(t, 0, c.Time)
	assert.Equal(t, 0, c.Frame)

	anim := Clock{Frame: 14}.Next(30)
	assert.Equal(t, 0, anim.Anim)
	anim = Clock{Frame: 15}.Next(30)
	assert.Equal(t, 1, anim.Anim)
}
