package world

// Size is a width/height pair.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Box is an axis-aligned rectangle given by its center and size. For even
// sizes the center sits right/below the geometric middle.
type Box struct {
	Center Cell `json:"center"`
	Size   Size `json:"size"`
}

// Min returns the top-left cell covered by the box.
func (b Box) Min() Cell {
	return Cell{
		X: b.Center.X - b.Size.W/2,
		Y: b.Center.Y - b.Size.H/2,
	}
}

// Max returns the bottom-right cell covered by the box (inclusive).
func (b Box) Max() Cell {
	return Cell{
		X: b.Center.X + (b.Size.W+1)/2 - 1,
		Y: b.Center.Y + (b.Size.H+1)/2 - 1,
	}
}

// Overlaps reports whether the two boxes share at least one cell.
func (b Box) Overlaps(o Box) bool {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	return bMin.X <= oMax.X && oMin.X <= bMax.X &&
		bMin.Y <= oMax.Y && oMin.Y <= bMax.Y
}

// Inside reports whether b lies entirely within o.
func (b Box) Inside(o Box) bool {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	return bMin.X >= oMin.X && bMax.X <= oMax.X &&
		bMin.Y >= oMin.Y && bMax.Y <= oMax.Y
}

// Contains reports whether the cell lies within the box.
func (b Box) Contains(c Cell) bool {
	return c.Box().Inside(b)
}

// Cells returns every cell covered by the box in row-major order.
func (b Box) Cells() []Cell {
	lo, hi := b.Min(), b.Max()
	cells := make([]Cell, 0, b.Size.W*b.Size.H)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}
