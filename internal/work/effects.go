package work

import (
	"slices"

	"github.com/talgya/hobbit-home/internal/world"
)

// Effects buffers the world changes produced by completed orders during a
// tick. Nothing is applied until the end of the tick, so every hobbit in a
// tick sees the same map.
type Effects struct {
	MapUpdates []world.MapUpdate
	Built      []*Building
	Demolished []*Building
}

// Complete records the outcome of a finished order.
func (e *Effects) Complete(o *Order) {
	switch o.Kind {
	case KindDig:
		e.MapUpdates = append(e.MapUpdates, world.MapUpdate{Position: o.Position, Symbol: world.Floor})
	case KindFill:
		e.MapUpdates = append(e.MapUpdates, world.MapUpdate{Position: o.Position, Symbol: world.Wall})
	case KindBuild:
		e.Built = append(e.Built, o.Building)
	case KindDemolish:
		e.Demolished = append(e.Demolished, o.Building)
	}
}

// Empty reports whether there is nothing to apply.
func (e *Effects) Empty() bool {
	return len(e.MapUpdates) == 0 && len(e.Built) == 0 && len(e.Demolished) == 0
}

// ApplyMap returns m with the buffered map writes applied.
func (e *Effects) ApplyMap(m *world.Map) *world.Map {
	return m.Apply(e.MapUpdates)
}

// ApplyBuildings returns the building list with new buildings appended and
// demolished ones removed. The input slice is not modified.
func (e *Effects) ApplyBuildings(buildings []*Building) []*Building {
	if len(e.Built) == 0 && len(e.Demolished) == 0 {
		return buildings
	}
	next := append(slices.Clone(buildings), e.Built...)
	return slices.DeleteFunc(next, func(b *Building) bool {
		return slices.Contains(e.Demolished, b)
	})
}
