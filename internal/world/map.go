package world

import (
	"fmt"
	"strings"
)

// Symbol is the contents of a single grid cell.
type Symbol rune

const (
	Wall  Symbol = '█'
	Floor Symbol = ' '
)

// Default map dimensions.
const (
	DefaultWidth  = 56
	DefaultHeight = 20
)

func (s Symbol) String() string {
	switch s {
	case Wall:
		return "wall"
	case Floor:
		return "floor"
	default:
		return fmt.Sprintf("symbol(%q)", rune(s))
	}
}

// Map is a Height × Width matrix of symbols. A Map is treated as a value
// during a tick: updates produce a new Map through Apply.
type Map struct {
	Width  int
	Height int
	cells  []Symbol
}

// MapUpdate is a single buffered write to the map.
type MapUpdate struct {
	Position Cell   `json:"position"`
	Symbol   Symbol `json:"symbol"`
}

// NewMap creates a map of the given size filled with one symbol.
func NewMap(width, height int, fill Symbol) *Map {
	m := &Map{
		Width:  width,
		Height: height,
		cells:  make([]Symbol, width*height),
	}
	for i := range m.cells {
		m.cells[i] = fill
	}
	return m
}

// ParseMap reads a map from rows of text. Every row must be the same
// width and contain only wall and floor runes.
func ParseMap(rows []string) (*Map, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse map: no rows")
	}
	width := len([]rune(rows[0]))
	m := NewMap(width, len(rows), Floor)
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("parse map: row %d has width %d, want %d", y, len(runes), width)
		}
		for x, r := range runes {
			switch Symbol(r) {
			case Wall, Floor:
				m.cells[y*width+x] = Symbol(r)
			default:
				return nil, fmt.Errorf("parse map: unknown symbol %q at %s", r, C(x, y))
			}
		}
	}
	return m, nil
}

// DefaultMap returns the starting map of a new colony: solid rock above an
// open cavern floor.
func DefaultMap() *Map {
	m, err := ParseMap([]string{
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"████████████████████████████████████████████████████████",
		"███████████████████████████████████████████████████████ ",
		"█████████   ██████████████████████████  █████████████   ",
		"                                                        ",
		"                                                        ",
		"                                                        ",
		"                                                        ",
		"                                                        ",
		"                                                        ",
		"                                                        ",
		"                                                        ",
	})
	if err != nil {
		panic(err)
	}
	return m
}

// InBounds reports whether the cell lies on the map.
func (m *Map) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// At returns the symbol at c. Out of bounds cells read as Wall.
func (m *Map) At(c Cell) Symbol {
	if !m.InBounds(c) {
		return Wall
	}
	return m.cells[c.Y*m.Width+c.X]
}

// Is reports whether the in-bounds cell c holds symbol s.
func (m *Map) Is(s Symbol, c Cell) bool {
	return m.InBounds(c) && m.At(c) == s
}

// IsWalkable reports whether c is on the map and not a wall.
func (m *Map) IsWalkable(c Cell) bool {
	return m.InBounds(c) && m.At(c) != Wall
}

// WalkableNeighbors returns the walkable neighbors of c in neighbor order.
func (m *Map) WalkableNeighbors(c Cell) []Cell {
	ns := make([]Cell, 0, 4)
	for _, n := range c.Neighbors() {
		if m.IsWalkable(n) {
			ns = append(ns, n)
		}
	}
	return ns
}

// Bounds returns the box covering the whole map.
func (m *Map) Bounds() Box {
	return Box{
		Center: Cell{X: m.Width / 2, Y: m.Height / 2},
		Size:   Size{W: m.Width, H: m.Height},
	}
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	cells := make([]Symbol, len(m.cells))
	copy(cells, m.cells)
	return &Map{Width: m.Width, Height: m.Height, cells: cells}
}

// Apply returns the map with the updates written in order. The receiver is
// left untouched; with no updates the receiver itself is returned.
func (m *Map) Apply(updates []MapUpdate) *Map {
	if len(updates) == 0 {
		return m
	}
	next := m.Clone()
	for _, u := range updates {
		if next.InBounds(u.Position) {
			next.cells[u.Position.Y*next.Width+u.Position.X] = u.Symbol
		}
	}
	return next
}

// Count returns how many cells hold symbol s.
func (m *Map) Count(s Symbol) int {
	n := 0
	for _, c := range m.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Rows renders the map as one string per row.
func (m *Map) Rows() []string {
	rows := make([]string, m.Height)
	var sb strings.Builder
	for y := 0; y < m.Height; y++ {
		sb.Reset()
		for x := 0; x < m.Width; x++ {
			sb.WriteRune(rune(m.cells[y*m.Width+x]))
		}
		rows[y] = sb.String()
	}
	return rows
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, floor=%d)", m.Width, m.Height, m.Count(Floor))
}
