package engine

import (
	"fmt"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/work"
)

// Tick advances the colony by one frame:
//
//  1. release one held order back to pending (every RetryEvery seconds)
//  2. assign pending orders to idle hobbits (every ActEvery frames)
//  3. advance every hobbit's action once, in index order (same cadence)
//  4. advance the clock
//  5. apply the map and building changes of completed orders
//
// The map is never written before step 5, so every hobbit sees the same
// map for the whole tick.
func Tick(prev *State) *State {
	s := prev.next()

	retryWork(s)

	var effects work.Effects
	if s.Tuning.ActEvery <= 0 || s.Clock.Frame%s.Tuning.ActEvery == 0 {
		assignWork(s)
		performActions(s, &effects)
	}

	s.Clock = s.Clock.Next(s.Tuning.FramesPerSecond)

	s.Map = effects.ApplyMap(s.Map)
	s.Buildings = effects.ApplyBuildings(s.Buildings)
	return s
}

// retryWork releases one held order on the first frame of every
// RetryEvery-th second.
func retryWork(s *State) {
	if s.Clock.Frame != 0 || s.Tuning.RetryEvery <= 0 || s.Clock.Time%s.Tuning.RetryEvery != 0 {
		return
	}
	q, o := s.Queue.RetryOne()
	if o == nil {
		return
	}
	s.Queue = q
	s.emit(workEvent(o, fmt.Sprintf("%s retried", o), map[string]any{
		"stage": work.StagePending.String(),
	}))
}

// performActions steps every action against the state as it stood before
// anyone moved this cycle, then folds the results back in.
func performActions(s *State, effects *work.Effects) {
	view := *s
	hobbits := make([]agents.Hobbit, len(s.Hobbits))
	actions := make([]Action, len(s.Actions))
	var completed, held []*work.Order

	for i, a := range s.Actions {
		out := a.Advance(&view)
		hobbits[i] = out.Hobbit

		switch out.Result {
		case Continue:
			actions[i] = a
		case Complete:
			actions[i] = NewIdleAction(i)
			if out.Order != nil {
				completed = append(completed, out.Order)
			}
		case Cancel:
			actions[i] = NewIdleAction(i)
			if out.Order != nil {
				held = append(held, out.Order)
			}
		}
	}

	s.Hobbits = hobbits
	s.Actions = actions
	s.Queue = s.Queue.Finish(completed, held)

	for _, o := range completed {
		effects.Complete(o)
		s.emit(workEvent(o, fmt.Sprintf("%s complete", o), map[string]any{
			"stage": work.StageNone.String(),
		}))
	}
	for _, o := range held {
		s.emit(workEvent(o, fmt.Sprintf("%s on hold", o), map[string]any{
			"stage": work.StageHeld.String(),
		}))
	}
}
