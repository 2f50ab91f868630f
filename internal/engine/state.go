// Package engine runs the colony: the per-hobbit action state machine,
// work assignment, the per-tick pipeline, and the host loop around it.
package engine

import (
	"math/rand"
	"slices"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// Tuning holds the cadences and budgets of the simulation.
type Tuning struct {
	FramesPerSecond int // Frames per simulated second
	ActEvery        int // Frames between assignment/action cycles
	RetryEvery      int // Seconds between releases of a held order
	WaitTimeout     int // Action cycles a worker waits on a blocked target
	WanderOdds      int // Idle hobbits wander with probability 1/WanderOdds; 0 disables
}

// DefaultTuning returns the standard cadences.
func DefaultTuning() Tuning {
	return Tuning{
		FramesPerSecond: 30,
		ActEvery:        15,
		RetryEvery:      10,
		WaitTimeout:     30,
		WanderOdds:      7,
	}
}

// State is one snapshot of the colony. Tick consumes a State and returns
// the next one; apart from the Action instances, which carry their own
// progress from tick to tick, the input is left as it was.
type State struct {
	Clock     Clock
	Map       *world.Map
	Hobbits   []agents.Hobbit
	Buildings []*work.Building
	Queue     work.Queue
	Actions   []Action // parallel to Hobbits
	Events    []Event  // produced by the call that returned this state
	Tuning    Tuning
	Rand      *rand.Rand
}

// NewState creates a colony with every hobbit idle.
func NewState(m *world.Map, hobbits []agents.Hobbit, tuning Tuning, seed int64) *State {
	actions := make([]Action, len(hobbits))
	for i := range hobbits {
		actions[i] = NewIdleAction(i)
	}
	return &State{
		Map:     m,
		Hobbits: slices.Clone(hobbits),
		Actions: actions,
		Tuning:  tuning,
		Rand:    rand.New(rand.NewSource(seed)),
	}
}

// next returns a shallow copy safe to modify: slices that the pipeline
// writes to are cloned and the event list is reset.
func (s *State) next() *State {
	n := *s
	n.Hobbits = slices.Clone(s.Hobbits)
	n.Actions = slices.Clone(s.Actions)
	n.Events = nil
	return &n
}

func (s *State) emit(e Event) {
	e.Tick = s.Clock.Ticks
	s.Events = append(s.Events, e)
}

// IdleHobbits returns the indexes of hobbits whose current action is Idle.
func (s *State) IdleHobbits() []int {
	var idle []int
	for i, a := range s.Actions {
		if _, ok := a.(*IdleAction); ok {
			idle = append(idle, i)
		}
	}
	return idle
}
