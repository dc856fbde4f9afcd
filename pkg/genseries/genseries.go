// Package genseries generates deterministic synthetic load series for
// validating the rainflow counting engine. It is explicitly an external
// collaborator (spec section 1): the core engine never imports it.
package genseries

import (
	"math"
	"math/rand"
)

// Params controls the synthetic series shape. Amplitude/Mean describe a
// slow sinusoidal carrier; NoiseStd is additive Gaussian noise on top of it,
// giving a signal with enough small and large reversals to exercise both
// the hysteresis filter and the finalization policies.
type Params struct {
	Seed      int64
	Length    int
	Mean      float64
	Amplitude float64
	Period    float64 // samples per carrier cycle
	NoiseStd  float64
}

// Generate produces a deterministic pseudo-random series from Params. The
// same Params always yields the same series, since the only source of
// randomness is a rand.Rand seeded from Params.Seed.
func Generate(p Params) []float64 {
	if p.Length <= 0 {
		return nil
	}
	if p.Period <= 0 {
		p.Period = 50
	}
	rng := rand.New(rand.NewSource(p.Seed))

	out := make([]float64, p.Length)
	for i := range out {
		carrier := p.Amplitude * math.Sin(2*math.Pi*float64(i)/p.Period)
		noise := rng.NormFloat64() * p.NoiseStd
		out[i] = p.Mean + carrier + noise
	}
	return out
}
