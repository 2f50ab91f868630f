package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMap(t *testing.T) {
	m := DefaultMap()
	assert.Equal(t, DefaultWidth, m.Width)
	assert.Equal(t, DefaultHeight, m.Height)
	assert.Equal(t, Wall, m.At(C(0, 0)))
	assert.Equal(t, Floor, m.At(C(18, 18)))
	assert.Equal(t, Floor, m.At(C(55, 10)))
}

func TestParseMap_roundTrip(t *testing.T) {
	rows := []string{
		"█ █",
		"   ",
		"██ ",
	}
	m, err := ParseMap(rows)
	require.NoError(t, err)
	assert.Equal(t, rows, m.Rows())
	assert.Equal(t, 4, m.Count(Wall))
}

func TestParseMap_errors(t *testing.T) {
	_, err := ParseMap(nil)
	assert.Error(t, err)

	_, err = ParseMap([]string{"  ", "   "})
	assert.Error(t, err)

	_, err = ParseMap([]string{" x"})
	assert.Error(t, err)
}

func TestMap_walkability(t *testing.T) {
	m, err := ParseMap([]string{
		" █ ",
		"   ",
	})
	require.NoError(t, err)

	assert.True(t, m.IsWalkable(C(0, 0)))
	assert.False(t, m.IsWalkable(C(1, 0)))
	assert.False(t, m.IsWalkable(C(-1, 0)))
	assert.False(t, m.IsWalkable(C(0, 2)))
	assert.Equal(t, Wall, m.At(C(5, 5)), "out of bounds reads as wall")
	assert.False(t, m.Is(Wall, C(5, 5)))

	// Up and left are off the map, right is a wall.
	assert.Equal(t, []Cell{C(0, 1)}, m.WalkableNeighbors(C(0, 0)))
	assert.Equal(t, []Cell{C(2, 1), C(0, 1)}, m.WalkableNeighbors(C(1, 1)))
}

func TestMap_applyCopiesOnWrite(t *testing.T) {
	m := NewMap(3, 3, Wall)
	next := m.Apply([]MapUpdate{
		{Position: C(1, 1), Symbol: Floor},
		{Position: C(9, 9), Symbol: Floor},
	})

	assert.Equal(t, Wall, m.At(C(1, 1)), "original untouched")
	assert.Equal(t, Floor, next.At(C(1, 1)))
	assert.Same(t, m, m.Apply(nil))
}

func TestMap_digThenFillRestores(t *testing.T) {
	m := NewMap(3, 3, Wall)
	dug := m.Apply([]MapUpdate{{Position: C(1, 1), Symbol: Floor}})
	filled := dug.Apply([]MapUpdate{{Position: C(1, 1), Symbol: Wall}})
	assert.Equal(t, m.Rows(), filled.Rows())
}

func TestMap_bounds(t *testing.T) {
	for _, size := range []Size{{W: 56, H: 20}, {W: 5, H: 5}, {W: 1, H: 4}} {
		m := NewMap(size.W, size.H, Floor)
		b := m.Bounds()
		assert.Equal(t, C(0, 0), b.Min(), "size %v", size)
		assert.Equal(t, C(size.W-1, size.H-1), b.Max(), "size %v", size)
	}
}
