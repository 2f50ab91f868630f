package agents

// Mood ranges over [MoodMin, MoodMax).
type Mood int

const (
	MoodMin Mood = 0
	MoodMax Mood = 6
)

// Clamp constrains m to the valid range.
func (m Mood) Clamp() Mood {
	if m < MoodMin {
		return MoodMin
	}
	if m >= MoodMax {
		return MoodMax - 1
	}
	return m
}

func (m Mood) String() string {
	switch m {
	case 0:
		return "Grumpy"
	case 1:
		return "Sad"
	case 2:
		return "Glum"
	case 3:
		return "Content"
	case 4:
		return "Happy"
	case 5:
		return "Joyful"
	default:
		return "???"
	}
}

// Hunger ranges over [HungerMin, HungerMax). Higher is hungrier.
type Hunger int

const (
	HungerMin Hunger = 0
	HungerMax Hunger = 11
)

// Clamp constrains h to the valid range.
func (h Hunger) Clamp() Hunger {
	if h < HungerMin {
		return HungerMin
	}
	if h >= HungerMax {
		return HungerMax - 1
	}
	return h
}

func (h Hunger) String() string {
	switch {
	case h < 0 || h >= HungerMax:
		return "???"
	case h <= 1:
		return "Full"
	case h <= 3:
		return "Peckish"
	case h <= 7:
		return "Hungry"
	default:
		return "Starving"
	}
}
