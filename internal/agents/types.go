// Package agents provides the hobbit data model: who they are, where they
// stand and how they feel.
package agents

import (
	"github.com/talgya/hobbit-home/internal/world"
)

// Hobbit is a member of the colony. Hobbits are plain values; the
// simulation replaces a hobbit wholesale when it moves or changes mood.
type Hobbit struct {
	Name     string     `json:"name"`
	FullName string     `json:"full_name"`
	Position world.Cell `json:"position"`
	Mood     Mood       `json:"mood"`
	Hunger   Hunger     `json:"hunger"`
	Thoughts string     `json:"thoughts"`
}

// New creates a hobbit in the default starting mood and hunger.
func New(name, fullName string, position world.Cell) Hobbit {
	return Hobbit{
		Name:     name,
		FullName: fullName,
		Position: position,
		Mood:     MoodMin,
		Hunger:   HungerMax - 1,
		Thoughts: idleThoughts[0],
	}
}

// At returns the index of the first hobbit standing on cell, or -1.
func At(hobbits []Hobbit, cell world.Cell) int {
	for i, h := range hobbits {
		if h.Position == cell {
			return i
		}
	}
	return -1
}
