// Map generation using layered simplex noise.
// A noisy surface line separates the rock above from the open floor below,
// and a second noise layer hollows caverns out of the rock.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Width   int     // Map width in cells
	Height  int     // Map height in cells
	Seed    int64   // Random seed (0 = random)
	Surface float64 // Mean rock/floor boundary as a fraction of height (0.0–1.0)
	Cavern  float64 // Noise threshold above which rock is hollowed (0.0–1.0)
}

// DefaultGenConfig returns a configuration close to the hand-drawn default map.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Seed:    0,
		Surface: 0.6,
		Cavern:  0.78,
	}
}

// spawnRows is the number of bottom rows that are always open floor, so
// there is always room to place the colony.
const spawnRows = 3

// Generate creates a map from layered noise.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}

	surfaceNoise := opensimplex.NewNormalized(seed)
	cavernNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Width, cfg.Height, Wall)
	amplitude := float64(cfg.Height) * 0.2

	for x := 0; x < cfg.Width; x++ {
		// Surface row wobbles around the configured mean.
		wobble := (octaveNoise(surfaceNoise, float64(x), 0, 3, 0.08, 0.5) - 0.5) * 2
		surface := int(cfg.Surface*float64(cfg.Height) + wobble*amplitude)
		if surface > cfg.Height-spawnRows {
			surface = cfg.Height - spawnRows
		}

		for y := 0; y < cfg.Height; y++ {
			c := Cell{X: x, Y: y}
			if y >= surface {
				m.cells[y*m.Width+x] = Floor
				continue
			}
			cavern := octaveNoise(cavernNoise, float64(x), float64(y), 4, 0.12, 0.5)
			if cavern > cfg.Cavern {
				m.cells[c.Y*m.Width+c.X] = Floor
			}
		}
	}

	return m
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
