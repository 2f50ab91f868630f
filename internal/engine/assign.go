package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/hobbit-home/internal/work"
)

// assignWork hands pending orders to idle hobbits. Orders are taken in
// queue order and each goes to the nearest hobbit not yet claimed in this
// pass; ties go to the lower index. This is greedy, not a minimum-cost
// matching.
func assignWork(s *State) {
	idle := s.IdleHobbits()
	if len(idle) == 0 || len(s.Queue.Pending) == 0 {
		return
	}

	n := min(len(s.Queue.Pending), len(idle))
	unclaimed, rest := s.Queue.Pending[:n], s.Queue.Pending[n:]

	started := make([]work.InProgress, 0, n)
	for _, o := range unclaimed {
		best := 0
		bestDist := s.Hobbits[idle[0]].Position.Distance(o.Position)
		for j := 1; j < len(idle); j++ {
			if d := s.Hobbits[idle[j]].Position.Distance(o.Position); d < bestDist {
				best, bestDist = j, d
			}
		}
		worker := idle[best]
		idle = slices.Delete(idle, best, best+1)

		s.Actions[worker] = NewWorkAction(worker, o, s.Tuning.WaitTimeout)
		started = append(started, work.InProgress{Worker: worker, Order: o})
		s.emit(workEvent(o, fmt.Sprintf("%s takes up %s", s.Hobbits[worker].Name, o), map[string]any{
			"stage":  work.StageInProgress.String(),
			"worker": worker,
		}))
	}

	s.Queue = s.Queue.Start(started, rest)
}

// Enqueue returns the state with o added to the pending list. Callers are
// expected to have validated the order (see BuildFits, FindWorkAt).
func Enqueue(s *State, o *work.Order) *State {
	n := s.next()
	n.Queue = n.Queue.Add(o)
	n.emit(workEvent(o, fmt.Sprintf("%s ordered", o), map[string]any{
		"stage": work.StagePending.String(),
	}))
	return n
}

// CancelWork returns the state with o evicted from the queue. If a hobbit was
// working on it, that hobbit goes back to idling. Cancelling an order that
// is not queued is a no-op.
func CancelWork(s *State, o *work.Order) *State {
	q, stage, worker := s.Queue.Remove(o)
	if stage == work.StageNone {
		return s
	}
	n := s.next()
	n.Queue = q
	if stage == work.StageInProgress {
		n.Actions[worker] = NewIdleAction(worker)
	}
	n.emit(workEvent(o, fmt.Sprintf("%s cancelled", o), map[string]any{
		"stage": work.StageNone.String(),
		"from":  stage.String(),
	}))
	return n
}

func workEvent(o *work.Order, desc string, meta map[string]any) Event {
	meta["order_id"] = o.ID
	meta["kind"] = o.Kind.String()
	meta["x"] = o.Position.X
	meta["y"] = o.Position.Y
	return Event{
		Description: desc,
		Category:    CategoryWork,
		Meta:        meta,
	}
}
