// Hobbit spawning: the default colony and seeded colonies for generated maps.
package agents

import (
	"math/rand"

	"github.com/talgya/hobbit-home/internal/world"
)

// DefaultColony returns the five hobbits a new game starts with on the
// default map.
func DefaultColony() []Hobbit {
	return []Hobbit{
		New("Gundabald", "Gundabald Bolger", world.C(18, 18)),
		New("Frogo", "Frogo Hornfoot", world.C(26, 16)),
		New("Stumpy", "Stumpy", world.C(36, 17)),
		New("Hamwise", "Hamwise Prouse", world.C(30, 17)),
		New("Mordo", "Mordo Glugbottle", world.C(20, 19)),
	}
}

// Spawner creates named hobbits.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner creates a hobbit spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng: rand.New(rand.NewSource(seed + 300)),
	}
}

// SpawnColony places one hobbit on each of the given cells.
func (s *Spawner) SpawnColony(cells []world.Cell) []Hobbit {
	hobbits := make([]Hobbit, 0, len(cells))
	used := make(map[string]bool)
	for _, c := range cells {
		first, full := s.generateName(used)
		h := New(first, full, c)
		h.Mood = Mood(s.rng.Intn(int(MoodMax)))
		h.Thoughts = RandomThought(s.rng)
		hobbits = append(hobbits, h)
	}
	return hobbits
}

// generateName picks a first name not yet in used, falling back to
// duplicates once every name is taken.
func (s *Spawner) generateName(used map[string]bool) (first, full string) {
	start := s.rng.Intn(len(firstNames))
	first = firstNames[start]
	for i := 1; used[first] && i < len(firstNames); i++ {
		first = firstNames[(start+i)%len(firstNames)]
	}
	used[first] = true

	last := lastNames[s.rng.Intn(len(lastNames))]
	if last == "" {
		return first, first
	}
	return first, first + " " + last
}

var firstNames = []string{
	"Gundabald", "Frogo", "Stumpy", "Hamwise", "Mordo", "Bungo", "Drogo",
	"Fosco", "Lobelia", "Primula", "Belladonna", "Hildigrim", "Tolman",
	"Rosie", "Marigold", "Posco", "Odo", "Esmeralda", "Griffo", "Lily",
}

// An empty last name leaves the hobbit with a single name, like Stumpy.
var lastNames = []string{
	"Bolger", "Hornfoot", "Prouse", "Glugbottle", "Bracegirdle", "Burrows",
	"Chubb", "Goodbody", "Proudfoot", "Sackville", "Tunnelly", "Underhill", "",
}
