// Colony placement: finds open floor cells to drop a starting colony on.
package world

import (
	"math/rand"
	"sort"
)

// PlaceColony picks up to count open floor cells for starting hobbits,
// preferring cells with open surroundings and keeping them minSpacing apart.
// The result is deterministic for a given map and seed.
func PlaceColony(m *Map, count, minSpacing int, seed int64) []Cell {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		cell  Cell
		score int
		tie   int
	}
	var candidates []scored

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := Cell{X: x, Y: y}
			if !m.IsWalkable(c) {
				continue
			}
			s := openness(m, c)
			if s > 0 {
				candidates = append(candidates, scored{cell: c, score: s, tie: rng.Int()})
			}
		}
	}

	// Sort by score descending, random but seeded among equals.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].tie < candidates[j].tie
	})

	placed := make([]Cell, 0, count)
	for _, c := range candidates {
		if len(placed) >= count {
			break
		}
		if tooClose(c.cell, placed, minSpacing) {
			continue
		}
		placed = append(placed, c.cell)
	}
	return placed
}

// openness counts walkable cells in the 5×5 square around c.
func openness(m *Map, c Cell) int {
	n := 0
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if m.IsWalkable(Cell{X: c.X + dx, Y: c.Y + dy}) {
				n++
			}
		}
	}
	return n
}

func tooClose(c Cell, placed []Cell, minDist int) bool {
	for _, p := range placed {
		if c.Distance(p) < minDist {
			return true
		}
	}
	return false
}
