package work

import "slices"

// Stage is the lifecycle stage of a queued order.
type Stage uint8

const (
	StageNone Stage = iota
	StagePending
	StageHeld
	StageInProgress
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageHeld:
		return "held"
	case StageInProgress:
		return "in_progress"
	default:
		return "none"
	}
}

// InProgress binds one hobbit (by index) to one order.
type InProgress struct {
	Worker int
	Order  *Order
}

// Queue tracks every outstanding order in exactly one of three lists.
// Queue values are never modified in place: every operation returns a new
// Queue sharing no slices with the receiver.
type Queue struct {
	Pending    []*Order     // unclaimed, oldest first
	Held       []*Order     // cancelled mid-work, waiting to be retried
	InProgress []InProgress // claimed by a worker
}

// Add appends o to the pending list.
func (q Queue) Add(o *Order) Queue {
	q.Pending = append(slices.Clone(q.Pending), o)
	return q
}

// Start moves a batch of orders into progress. pending replaces the
// pending list and must be what remains after removing the started orders.
func (q Queue) Start(started []InProgress, pending []*Order) Queue {
	q.InProgress = append(slices.Clone(q.InProgress), started...)
	q.Pending = slices.Clone(pending)
	return q
}

// Finish drops completed and held orders from progress and appends the held
// ones to the held list.
func (q Queue) Finish(completed, held []*Order) Queue {
	if len(completed) == 0 && len(held) == 0 {
		return q
	}
	inProgress := make([]InProgress, 0, len(q.InProgress))
	for _, ip := range q.InProgress {
		if slices.Contains(completed, ip.Order) || slices.Contains(held, ip.Order) {
			continue
		}
		inProgress = append(inProgress, ip)
	}
	q.InProgress = inProgress
	q.Held = append(slices.Clone(q.Held), held...)
	return q
}

// RetryOne moves the oldest held order back to pending. It returns the
// moved order, or nil when nothing is held.
func (q Queue) RetryOne() (Queue, *Order) {
	if len(q.Held) == 0 {
		return q, nil
	}
	o := q.Held[0]
	q.Held = slices.Clone(q.Held[1:])
	q.Pending = append(slices.Clone(q.Pending), o)
	return q, o
}

// Find returns the first order matching pred, searching pending, then
// held, then in-progress.
func (q Queue) Find(pred func(*Order) bool) *Order {
	for _, o := range q.Pending {
		if pred(o) {
			return o
		}
	}
	for _, o := range q.Held {
		if pred(o) {
			return o
		}
	}
	for _, ip := range q.InProgress {
		if pred(ip.Order) {
			return ip.Order
		}
	}
	return nil
}

// ByID finds an order by its ID.
func (q Queue) ByID(id string) *Order {
	return q.Find(func(o *Order) bool { return o.ID == id })
}

// Locate reports the stage o is in and, when in progress, its worker.
// worker is -1 otherwise.
func (q Queue) Locate(o *Order) (stage Stage, worker int) {
	if slices.Contains(q.Pending, o) {
		return StagePending, -1
	}
	if slices.Contains(q.Held, o) {
		return StageHeld, -1
	}
	for _, ip := range q.InProgress {
		if ip.Order == o {
			return StageInProgress, ip.Worker
		}
	}
	return StageNone, -1
}

// Remove evicts o from whichever list holds it. It reports the stage the
// order was removed from and, for in-progress orders, the worker that must
// be released.
func (q Queue) Remove(o *Order) (next Queue, stage Stage, worker int) {
	stage, worker = q.Locate(o)
	switch stage {
	case StagePending:
		q.Pending = slices.DeleteFunc(slices.Clone(q.Pending), func(p *Order) bool { return p == o })
	case StageHeld:
		q.Held = slices.DeleteFunc(slices.Clone(q.Held), func(p *Order) bool { return p == o })
	case StageInProgress:
		q.InProgress = slices.DeleteFunc(slices.Clone(q.InProgress), func(ip InProgress) bool { return ip.Order == o })
	}
	return q, stage, worker
}

// Each calls fn for every order with its stage, in Find order.
func (q Queue) Each(fn func(o *Order, stage Stage)) {
	for _, o := range q.Pending {
		fn(o, StagePending)
	}
	for _, o := range q.Held {
		fn(o, StageHeld)
	}
	for _, ip := range q.InProgress {
		fn(ip.Order, StageInProgress)
	}
}

// Len returns the number of outstanding orders.
func (q Queue) Len() int {
	return len(q.Pending) + len(q.Held) + len(q.InProgress)
}
