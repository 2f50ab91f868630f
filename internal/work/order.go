// Package work defines the colony's work orders, the buildings they
// produce, and the queue that tracks each order's lifecycle.
package work

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/hobbit-home/internal/world"
)

// DefaultTime is the number of work ticks an order takes once a hobbit is
// in place.
const DefaultTime = 10

// Kind enumerates the types of work order.
type Kind uint8

const (
	KindDig Kind = iota
	KindFill
	KindBuild
	KindDemolish
)

func (k Kind) String() string {
	switch k {
	case KindDig:
		return "Dig"
	case KindFill:
		return "Fill"
	case KindBuild:
		return "Build"
	case KindDemolish:
		return "Demolish"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind reads a kind from its name, ignoring case.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{KindDig, KindFill, KindBuild, KindDemolish} {
		if strings.EqualFold(s, k.String()) {
			return k, true
		}
	}
	return 0, false
}

// Order is a queued job. Orders are immutable once created and compared by
// identity; the remaining time is tracked by whoever executes the order.
type Order struct {
	ID       string
	Kind     Kind
	Position world.Cell
	Time     int
	Building *Building // Build and Demolish only
}

func newOrder(kind Kind, position world.Cell, b *Building) *Order {
	return &Order{
		ID:       uuid.NewString(),
		Kind:     kind,
		Position: position,
		Time:     DefaultTime,
		Building: b,
	}
}

// Dig creates an order to clear the wall at position.
func Dig(position world.Cell) *Order {
	return newOrder(KindDig, position, nil)
}

// Fill creates an order to wall up the floor at position.
func Fill(position world.Cell) *Order {
	return newOrder(KindFill, position, nil)
}

// Build creates an order to construct b, worked from position.
func Build(position world.Cell, b *Building) *Order {
	return newOrder(KindBuild, position, b)
}

// Demolish creates an order to tear down b, worked from position.
func Demolish(position world.Cell, b *Building) *Order {
	return newOrder(KindDemolish, position, b)
}

// Covers reports whether the order claims cell: either it targets the cell
// directly or it is a Build/Demolish whose footprint includes it.
func (o *Order) Covers(cell world.Cell) bool {
	if o.Position == cell {
		return true
	}
	if (o.Kind == KindBuild || o.Kind == KindDemolish) && o.Building != nil {
		return o.Building.Box.Overlaps(cell.Box())
	}
	return false
}

func (o *Order) String() string {
	return fmt.Sprintf("%s%s", o.Kind, o.Position)
}
