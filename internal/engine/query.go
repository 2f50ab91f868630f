package engine

import (
	"slices"

	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// Condition is the live precondition of a work order.
type Condition uint8

const (
	CondValid Condition = iota
	CondWait
	CondCancel
)

func (c Condition) String() string {
	switch c {
	case CondValid:
		return "Valid"
	case CondWait:
		return "Wait"
	default:
		return "Cancel"
	}
}

// IsOccupied reports whether any hobbit other than except stands on cell.
// Pass -1 to consider every hobbit.
func IsOccupied(s *State, cell world.Cell, except int) bool {
	for i, h := range s.Hobbits {
		if i != except && h.Position == cell {
			return true
		}
	}
	return false
}

// FindWorkAt returns the order that claims cell in any lifecycle stage, or
// nil. Build and Demolish orders claim their whole footprint.
func FindWorkAt(s *State, cell world.Cell) *work.Order {
	return s.Queue.Find(func(o *work.Order) bool { return o.Covers(cell) })
}

// FindBuildingAt returns the first building overlapping box, or nil. Use
// cell.Box() to look up a single cell.
func FindBuildingAt(s *State, box world.Box) *work.Building {
	for _, b := range s.Buildings {
		if b.Box.Overlaps(box) {
			return b
		}
	}
	return nil
}

// BuildingOfType returns the first building of the given type, or nil.
func BuildingOfType(s *State, t work.BuildingType) *work.Building {
	for _, b := range s.Buildings {
		if b.Type == t {
			return b
		}
	}
	return nil
}

// BuildFits reports whether a Build order can go ahead: the footprint is
// on the map, entirely open floor, clear of existing buildings and clear of
// every other Build order.
func BuildFits(s *State, o *work.Order) bool {
	if o.Building == nil {
		return false
	}
	box := o.Building.Box
	if !box.Inside(s.Map.Bounds()) {
		return false
	}
	for _, c := range box.Cells() {
		if !s.Map.Is(world.Floor, c) {
			return false
		}
	}
	if FindBuildingAt(s, box) != nil {
		return false
	}
	conflict := s.Queue.Find(func(w *work.Order) bool {
		return w != o &&
			w.Kind == work.KindBuild &&
			w.Building != nil &&
			w.Building.Box.Overlaps(box)
	})
	return conflict == nil
}

// CheckWorkConditions re-validates an order against the current state.
// worker is the hobbit executing it, ignored for occupancy.
func CheckWorkConditions(s *State, o *work.Order, worker int) Condition {
	switch o.Kind {
	case work.KindDig:
		if !s.Map.Is(world.Wall, o.Position) {
			return CondCancel
		}
		return CondValid
	case work.KindFill:
		if !s.Map.Is(world.Floor, o.Position) {
			return CondCancel
		}
		if IsOccupied(s, o.Position, worker) {
			return CondWait
		}
		return CondValid
	case work.KindBuild:
		if !BuildFits(s, o) {
			return CondCancel
		}
		return CondValid
	case work.KindDemolish:
		if !slices.Contains(s.Buildings, o.Building) {
			return CondCancel
		}
		return CondValid
	default:
		return CondCancel
	}
}
