package adapter

import (
	"math/rand/v2"
	"sync"
)

// Synthesizer fills in the price and rating the catalog does not provide.
type Synthesizer interface {
	Price() float64
	Rating() float64
}

// RandomSynth draws price from [9.99, 19.99) and rating from [3.5, 5.0).
// Values differ on every call, so repeated lookups of the same book disagree.
type RandomSynth struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSynth seeds the generator; seed 0 picks a random seed.
func NewRandomSynth(seed uint64) *RandomSynth {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomSynth{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomSynth) Price() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return 9.99 + r.rnd.Float64()*10
}

func (r *RandomSynth) Rating() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return 3.5 + r.rnd.Float64()*1.5
}

// FixedSynth always returns the same values.
type FixedSynth struct {
	PriceValue  float64
	RatingValue float64
}

func (f FixedSynth) Price() float64  { return f.PriceValue }
func (f FixedSynth) Rating() float64 { return f.RatingValue }
