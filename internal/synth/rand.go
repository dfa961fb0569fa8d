package synth

import "math/rand/v2"

// Rand is the random source used for clip selection.
// *rand.Rand from math/rand/v2 satisfies it; implementations shared
// between goroutines must be safe for concurrent use.
type Rand interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// globalRand uses the top-level math/rand/v2 functions, which are safe
// for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Float64() float64                   { return rand.Float64() }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
