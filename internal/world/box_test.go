package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox_corners(t *testing.T) {
	b := Box{Center: C(5, 5), Size: Size{W: 3, H: 4}}
	assert.Equal(t, C(4, 3), b.Min())
	assert.Equal(t, C(6, 6), b.Max())
	assert.Len(t, b.Cells(), 12)

	one := C(2, 3).Box()
	assert.Equal(t, C(2, 3), one.Min())
	assert.Equal(t, C(2, 3), one.Max())
}

func TestBox_overlaps(t *testing.T) {
	a := Box{Center: C(5, 5), Size: Size{W: 3, H: 3}}

	for _, tc := range []struct {
		name string
		b    Box
		want bool
	}{
		{"same", a, true},
		{"touching corner", Box{Center: C(7, 7), Size: Size{W: 3, H: 3}}, true},
		{"adjacent right", Box{Center: C(8, 5), Size: Size{W: 3, H: 3}}, false},
		{"overlap x only", Box{Center: C(5, 9), Size: Size{W: 3, H: 3}}, false},
		{"single cell inside", C(4, 6).Box(), true},
		{"single cell outside", C(3, 6).Box(), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(a))
		})
	}
}

func TestBox_inside(t *testing.T) {
	bounds := NewMap(10, 10, Floor).Bounds()
	assert.True(t, Box{Center: C(1, 1), Size: Size{W: 3, H: 3}}.Inside(bounds))
	assert.False(t, Box{Center: C(0, 1), Size: Size{W: 3, H: 3}}.Inside(bounds))
	assert.True(t, Box{Center: C(9, 9), Size: Size{W: 2, H: 2}}.Inside(bounds))
	assert.False(t, Box{Center: C(10, 9), Size: Size{W: 2, H: 2}}.Inside(bounds))
	assert.True(t, bounds.Contains(C(9, 9)))
	assert.False(t, bounds.Contains(C(10, 9)))
}

func TestCell_neighborsAndDistance(t *testing.T) {
	c := C(3, 3)
	assert.Equal(t, [4]Cell{C(3, 2), C(4, 3), C(3, 4), C(2, 3)}, c.Neighbors())
	assert.Equal(t, 5, c.Distance(C(0, 1)))
	assert.Equal(t, 0, c.Distance(c))
}
