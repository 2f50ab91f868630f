// Package world provides the bounded cell grid, walkability queries and
// A* pathfinding the colony moves over.
package world

import "fmt"

// Cell is an integer coordinate on the grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// C is shorthand for Cell{X: x, Y: y}.
func C(x, y int) Cell {
	return Cell{X: x, Y: y}
}

// Neighbors returns the four orthogonal neighbors in the order up, right,
// down, left. Pathfinding and adjacency checks rely on this order.
func (c Cell) Neighbors() [4]Cell {
	return [4]Cell{
		{X: c.X, Y: c.Y - 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
	}
}

// Distance returns the Manhattan distance between two cells.
func (c Cell) Distance(o Cell) int {
	return abs(o.X-c.X) + abs(o.Y-c.Y)
}

// Box returns the 1×1 box covering the cell.
func (c Cell) Box() Box {
	return Box{Center: c, Size: Size{W: 1, H: 1}}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Path is an ordered list of cells to step through.
type Path []Cell

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
