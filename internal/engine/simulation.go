// Simulation owns the current colony state and serialises access to it.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// Command validation errors.
var (
	ErrOutOfBounds     = errors.New("cell is off the map")
	ErrNotWall         = errors.New("cell is not a wall")
	ErrNotFloor        = errors.New("cell is not floor")
	ErrWorkExists      = errors.New("work already ordered here")
	ErrBuildBlocked    = errors.New("building does not fit")
	ErrNoBuilding      = errors.New("no building here")
	ErrUnknownOrder    = errors.New("unknown order")
	ErrUnknownBuilding = errors.New("unknown building type")
)

// MaxEvents bounds the in-memory event log.
const MaxEvents = 1000

// Simulation wraps the pure Tick pipeline for a long-running host: the run
// loop steps it while API handlers read and issue orders.
type Simulation struct {
	// WorkTime overrides the duration of new orders when positive.
	WorkTime int

	mu     sync.Mutex
	state  *State
	events []Event

	subs    map[int]chan Event
	nextSub int
}

// NewSimulation starts hosting s.
func NewSimulation(s *State) *Simulation {
	return &Simulation{
		state: s,
		subs:  make(map[int]chan Event),
	}
}

// Step advances the colony by one tick.
func (sim *Simulation) Step() {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.commit(Tick(sim.state))
}

// View calls fn with the current state under the lock. fn must not retain
// the state or modify it.
func (sim *Simulation) View(fn func(s *State)) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	fn(sim.state)
}

// State returns the current state. The caller must not modify it.
func (sim *Simulation) State() *State {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state
}

// Replace swaps in a whole new state, e.g. after loading a snapshot.
func (sim *Simulation) Replace(s *State) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.state = s
	sim.record(Event{
		Tick:        s.Clock.Ticks,
		Description: "Colony restored",
		Category:    CategoryColony,
	})
}

// CurrentTick returns the number of ticks processed so far.
func (sim *Simulation) CurrentTick() uint64 {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state.Clock.Ticks
}

// RecentEvents returns up to n of the latest events, oldest first.
func (sim *Simulation) RecentEvents(n int) []Event {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	start := max(len(sim.events)-n, 0)
	return append([]Event(nil), sim.events[start:]...)
}

// Subscribe registers for every event recorded from now on. Slow
// subscribers miss events rather than stall the simulation.
func (sim *Simulation) Subscribe() (int, <-chan Event) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	id := sim.nextSub
	sim.nextSub++
	ch := make(chan Event, 64)
	sim.subs[id] = ch
	return id, ch
}

// Unsubscribe closes the subscription's channel.
func (sim *Simulation) Unsubscribe(id int) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	if ch, ok := sim.subs[id]; ok {
		close(ch)
		delete(sim.subs, id)
	}
}

// commit installs next as the current state and publishes its events.
// Callers hold mu.
func (sim *Simulation) commit(next *State) {
	sim.state = next
	for _, e := range next.Events {
		sim.record(e)
	}
}

func (sim *Simulation) record(e Event) {
	slog.Debug("event", "tick", e.Tick, "category", e.Category, "description", e.Description)
	sim.events = append(sim.events, e)
	if len(sim.events) > MaxEvents {
		sim.events = sim.events[len(sim.events)-MaxEvents:]
	}
	for _, ch := range sim.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// OrderDig queues digging out the wall at cell.
func (sim *Simulation) OrderDig(cell world.Cell) (*work.Order, error) {
	return sim.order(func(s *State) (*work.Order, error) {
		if err := checkFree(s, cell); err != nil {
			return nil, err
		}
		if !s.Map.Is(world.Wall, cell) {
			return nil, fmt.Errorf("dig %s: %w", cell, ErrNotWall)
		}
		return work.Dig(cell), nil
	})
}

// OrderFill queues filling in the floor at cell.
func (sim *Simulation) OrderFill(cell world.Cell) (*work.Order, error) {
	return sim.order(func(s *State) (*work.Order, error) {
		if err := checkFree(s, cell); err != nil {
			return nil, err
		}
		if !s.Map.Is(world.Floor, cell) {
			return nil, fmt.Errorf("fill %s: %w", cell, ErrNotFloor)
		}
		return work.Fill(cell), nil
	})
}

// OrderBuild queues a building of type t centered on cell.
func (sim *Simulation) OrderBuild(t work.BuildingType, cell world.Cell) (*work.Order, error) {
	def, ok := work.LookupDef(t)
	if !ok {
		return nil, fmt.Errorf("build %q: %w", t, ErrUnknownBuilding)
	}
	return sim.order(func(s *State) (*work.Order, error) {
		if err := checkFree(s, cell); err != nil {
			return nil, err
		}
		o := work.Build(cell, work.NewBuilding(def, cell))
		if !BuildFits(s, o) {
			return nil, fmt.Errorf("build %s at %s: %w", def.Name, cell, ErrBuildBlocked)
		}
		return o, nil
	})
}

// OrderDemolish queues tearing down the building covering cell.
func (sim *Simulation) OrderDemolish(cell world.Cell) (*work.Order, error) {
	return sim.order(func(s *State) (*work.Order, error) {
		if !s.Map.InBounds(cell) {
			return nil, fmt.Errorf("demolish %s: %w", cell, ErrOutOfBounds)
		}
		b := FindBuildingAt(s, cell.Box())
		if b == nil {
			return nil, fmt.Errorf("demolish %s: %w", cell, ErrNoBuilding)
		}
		queued := s.Queue.Find(func(o *work.Order) bool {
			return o.Kind == work.KindDemolish && o.Building == b
		})
		if queued != nil {
			return nil, fmt.Errorf("demolish %s: %w", b, ErrWorkExists)
		}
		return work.Demolish(b.Box.Center, b), nil
	})
}

// CancelOrder drops the order with the given ID from whichever list holds
// it.
func (sim *Simulation) CancelOrder(id string) error {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	o := sim.state.Queue.ByID(id)
	if o == nil {
		return fmt.Errorf("cancel %s: %w", id, ErrUnknownOrder)
	}
	sim.commit(CancelWork(sim.state, o))
	slog.Info("order cancelled", "order", o.String(), "id", o.ID)
	return nil
}

// HobbitAt returns the hobbit standing on cell.
func (sim *Simulation) HobbitAt(cell world.Cell) (agents.Hobbit, bool) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	i := agents.At(sim.state.Hobbits, cell)
	if i < 0 {
		return agents.Hobbit{}, false
	}
	return sim.state.Hobbits[i], true
}

func (sim *Simulation) order(build func(s *State) (*work.Order, error)) (*work.Order, error) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	o, err := build(sim.state)
	if err != nil {
		return nil, err
	}
	if sim.WorkTime > 0 {
		o.Time = sim.WorkTime
	}
	sim.commit(Enqueue(sim.state, o))
	slog.Info("order queued", "order", o.String(), "id", o.ID)
	return o, nil
}

func checkFree(s *State, cell world.Cell) error {
	if !s.Map.InBounds(cell) {
		return fmt.Errorf("order %s: %w", cell, ErrOutOfBounds)
	}
	if o := FindWorkAt(s, cell); o != nil {
		return fmt.Errorf("order %s: %w (%s)", cell, ErrWorkExists, o)
	}
	return nil
}
