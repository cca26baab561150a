package model

import "math/rand/v2"

// Randomize replaces the active generation with random live cells. Each cell
// is alive with probability density and live cells are split evenly between
// Red and Blue. The same seed always yields the same generation.
func (g *Grid) Randomize(seed int64, density float64) {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	cur := g.Current()
	for i := range cur.alive {
		alive := rng.Float64() < density
		color := Neutral
		if alive {
			color = Red
			if rng.IntN(2) == 1 {
				color = Blue
			}
		}
		cur.Put(i, alive, color)
	}
	g.history = nil
}
