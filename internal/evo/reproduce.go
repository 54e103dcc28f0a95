package evo

import (
	"math/rand/v2"

	"treasurehunt/internal/vm"
)

// Reproduce builds a child program bit by bit, most significant bit first.
// Each bit comes from either parent with equal probability and is then
// flipped with mutationProbability. Neither parent is modified.
func Reproduce(parentA, parentB vm.Program, mutationProbability float64, rng *rand.Rand) vm.Program {
	var child vm.Program
	for i := range child {
		var gene byte
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if chance(rng, 0.5) {
				gene |= parentA[i] & mask
			} else {
				gene |= parentB[i] & mask
			}
			if chance(rng, mutationProbability) {
				gene ^= mask
			}
		}
		child[i] = gene
	}
	return child
}

// chance always consumes exactly one draw so the stream stays aligned for
// any probability.
func chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}
