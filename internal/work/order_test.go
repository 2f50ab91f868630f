package work

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hobbit-home/internal/world"
)

func TestOrder_constructors(t *testing.T) {
	d := Dig(world.C(1, 2))
	assert.Equal(t, KindDig, d.Kind)
	assert.Equal(t, DefaultTime, d.Time)
	assert.NotEmpty(t, d.ID)
	assert.NotEqual(t, d.ID, Dig(world.C(1, 2)).ID)
	assert.Equal(t, "Dig(1,2)", d.String())
}

func TestOrder_covers(t *testing.T) {
	def, _ := LookupDef(Kitchen)
	b := NewBuilding(def, world.C(5, 5))
	build := Build(world.C(5, 5), b)

	assert.True(t, build.Covers(world.C(5, 5)))
	assert.True(t, build.Covers(world.C(4, 4)))
	assert.False(t, build.Covers(world.C(7, 5)))

	dig := Dig(world.C(1, 1))
	assert.True(t, dig.Covers(world.C(1, 1)))
	assert.False(t, dig.Covers(world.C(1, 2)))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"dig":      KindDig,
		"FILL":     KindFill,
		"Build":    KindBuild,
		"demolish": KindDemolish,
	} {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseKind("bake")
	assert.False(t, ok)
}

func TestLookupDef(t *testing.T) {
	def, ok := LookupDef("diningroom")
	assert.True(t, ok)
	assert.Equal(t, world.Size{W: 4, H: 4}, def.Size)

	_, ok = LookupDef("Castle")
	assert.False(t, ok)
	assert.Len(t, Catalogue, 7)
}
