package engine

import (
	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// Result is the outcome of advancing an action one step.
type Result uint8

const (
	Continue Result = iota
	Complete
	Cancel
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "Continue"
	case Complete:
		return "Complete"
	default:
		return "Cancel"
	}
}

// Outcome carries the actor's updated hobbit and, for work, the order.
type Outcome struct {
	Result Result
	Hobbit agents.Hobbit
	Order  *work.Order
}

// ActionKind names the concrete action for display.
type ActionKind string

const (
	KindIdle         ActionKind = "idle"
	KindWalk         ActionKind = "walk"
	KindGoTo         ActionKind = "goto"
	KindGoToAdjacent ActionKind = "goto_adjacent"
	KindWork         ActionKind = "work"
)

// Action is a resumable per-hobbit state machine. Each Advance performs
// one bounded step against the given state and reports how it went. Any
// progress (a cached path, a countdown) lives in the action itself, so the
// same instance must be advanced on every cycle.
type Action interface {
	Advance(s *State) Outcome
	Kind() ActionKind
	Order() *work.Order
}

func outcome(s *State, actor int, r Result) Outcome {
	return Outcome{Result: r, Hobbit: s.Hobbits[actor]}
}

// IdleAction lets a hobbit mill about.
type IdleAction struct {
	actor   int
	thought bool
}

// NewIdleAction creates an idle action for the hobbit at index actor.
func NewIdleAction(actor int) *IdleAction {
	return &IdleAction{actor: actor}
}

func (a *IdleAction) Kind() ActionKind   { return KindIdle }
func (a *IdleAction) Order() *work.Order { return nil }

// Advance never finishes. On the first step the hobbit picks something to
// think about; on any step it may wander to a random open neighbor.
func (a *IdleAction) Advance(s *State) Outcome {
	h := s.Hobbits[a.actor]
	if !a.thought {
		h.Thoughts = agents.RandomThought(s.Rand)
		a.thought = true
	}
	if s.Tuning.WanderOdds > 0 && s.Rand.Intn(s.Tuning.WanderOdds) == 0 {
		if ns := s.Map.WalkableNeighbors(h.Position); len(ns) > 0 {
			h.Position = ns[s.Rand.Intn(len(ns))]
		}
	}
	return Outcome{Result: Continue, Hobbit: h}
}

// WalkAction steps along a precomputed path, one cell per step.
type WalkAction struct {
	actor int
	path  world.Path
}

// NewWalkAction creates a walk along path for the hobbit at index actor.
func NewWalkAction(actor int, path world.Path) *WalkAction {
	return &WalkAction{actor: actor, path: path}
}

func (a *WalkAction) Kind() ActionKind   { return KindWalk }
func (a *WalkAction) Order() *work.Order { return nil }

// Advance completes once the path is used up and cancels if the next cell
// has been walled off since the path was planned.
func (a *WalkAction) Advance(s *State) Outcome {
	if len(a.path) == 0 {
		return outcome(s, a.actor, Complete)
	}
	next := a.path[0]
	a.path = a.path[1:]
	if !s.Map.IsWalkable(next) {
		return outcome(s, a.actor, Cancel)
	}
	h := s.Hobbits[a.actor]
	h.Position = next
	return Outcome{Result: Continue, Hobbit: h}
}

// followPlan runs the shared plan-then-walk loop of GoTo and GoToAdjacent.
// A blocked walk is dropped and replanned on the next step instead of
// failing the whole trip.
func followPlan(s *State, actor int, walk **WalkAction, plan func(from world.Cell) (world.Path, bool)) Outcome {
	if *walk == nil {
		path, ok := plan(s.Hobbits[actor].Position)
		if !ok {
			return outcome(s, actor, Cancel)
		}
		*walk = NewWalkAction(actor, path)
	}

	out := (*walk).Advance(s)
	if out.Result == Cancel {
		*walk = nil
		out.Result = Continue
	}
	return out
}

// GoToAction walks to a destination.
type GoToAction struct {
	actor       int
	destination world.Cell
	walk        *WalkAction
}

// NewGoToAction creates a trip to destination for the hobbit at index actor.
func NewGoToAction(actor int, destination world.Cell) *GoToAction {
	return &GoToAction{actor: actor, destination: destination}
}

func (a *GoToAction) Kind() ActionKind   { return KindGoTo }
func (a *GoToAction) Order() *work.Order { return nil }

// Advance cancels only when no path exists at planning time.
func (a *GoToAction) Advance(s *State) Outcome {
	return followPlan(s, a.actor, &a.walk, func(from world.Cell) (world.Path, bool) {
		return s.Map.AStar(from, a.destination)
	})
}

// GoToAdjacentAction walks to a cell next to the destination, for work on
// targets the hobbit must not stand on.
type GoToAdjacentAction struct {
	actor       int
	destination world.Cell
	walk        *WalkAction
}

// NewGoToAdjacentAction creates a trip next to destination for the hobbit
// at index actor.
func NewGoToAdjacentAction(actor int, destination world.Cell) *GoToAdjacentAction {
	return &GoToAdjacentAction{actor: actor, destination: destination}
}

func (a *GoToAdjacentAction) Kind() ActionKind   { return KindGoToAdjacent }
func (a *GoToAdjacentAction) Order() *work.Order { return nil }

// Advance plans to the first reachable open neighbor of the destination,
// trying neighbors in order.
func (a *GoToAdjacentAction) Advance(s *State) Outcome {
	return followPlan(s, a.actor, &a.walk, func(from world.Cell) (world.Path, bool) {
		for _, n := range s.Map.WalkableNeighbors(a.destination) {
			if path, ok := s.Map.AStar(from, n); ok {
				return path, true
			}
		}
		return nil, false
	})
}

// WorkAction carries out a work order: approach, then count down.
type WorkAction struct {
	actor     int
	order     *work.Order
	approach  *GoToAdjacentAction // nil once in position
	remaining int
	timeout   int
}

// NewWorkAction binds order to the hobbit at index actor. waitTimeout
// bounds how many steps the worker waits on a blocked target.
func NewWorkAction(actor int, order *work.Order, waitTimeout int) *WorkAction {
	return &WorkAction{
		actor:     actor,
		order:     order,
		approach:  NewGoToAdjacentAction(actor, order.Position),
		remaining: order.Time,
		timeout:   waitTimeout,
	}
}

func (a *WorkAction) Kind() ActionKind   { return KindWork }
func (a *WorkAction) Order() *work.Order { return a.order }

// Remaining returns the work ticks left on the order.
func (a *WorkAction) Remaining() int { return a.remaining }

// Advance checks the order is still worth doing before every step. While
// approaching, a Wait condition does not hold the worker up.
func (a *WorkAction) Advance(s *State) Outcome {
	cond := CheckWorkConditions(s, a.order, a.actor)
	if cond == CondCancel {
		return a.result(s, Cancel)
	}

	if a.approach != nil {
		out := a.approach.Advance(s)
		out.Order = a.order
		if out.Result == Complete {
			a.approach = nil
			out.Result = Continue
		}
		return out
	}

	if a.timeout <= 0 {
		return a.result(s, Cancel)
	}
	if cond == CondWait {
		a.timeout--
		return a.result(s, Continue)
	}

	a.remaining--
	if a.remaining <= 0 {
		return a.result(s, Complete)
	}
	return a.result(s, Continue)
}

func (a *WorkAction) result(s *State, r Result) Outcome {
	out := outcome(s, a.actor, r)
	out.Order = a.order
	return out
}
