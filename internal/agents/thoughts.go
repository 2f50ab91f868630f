package agents

import "math/rand"

var idleThoughts = []string{
	"Nothin' particular.",
	"Lovely day, innit?",
	"Oi.",
	"What's goin' on 'ere then?",
	"Nice weather.",
}

// RandomThought picks an idle musing.
func RandomThought(rng *rand.Rand) string {
	return idleThoughts[rng.Intn(len(idleThoughts))]
}
