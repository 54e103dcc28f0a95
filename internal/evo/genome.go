package evo

import (
	"math/rand/v2"

	"treasurehunt/internal/scape"
	"treasurehunt/internal/vm"
)

// RandomizedPrefix is how many leading cells a fresh program randomises; the
// rest start as zero and are reachable only through jumps or self-modification.
const RandomizedPrefix = 16

// Genome is a candidate program together with the results of its latest run.
type Genome struct {
	Program        vm.Program
	Fitness        float64
	TreasuresFound int
	Iterations     int
	Steps          []vm.Direction
}

func NewGenome(program vm.Program) Genome {
	return Genome{Program: program}
}

func RandomInstructions(rng *rand.Rand) vm.Program {
	var program vm.Program
	for i := 0; i < RandomizedPrefix; i++ {
		program[i] = byte(rng.IntN(256))
	}
	return program
}

// Record stores an evaluation outcome on the genome.
func (g *Genome) Record(fitness scape.Fitness, trace scape.Trace) {
	g.Fitness = float64(fitness)
	g.TreasuresFound = trace.TreasuresFound
	g.Iterations = trace.Iterations
	g.Steps = trace.Steps
}

// Clone copies the genome including its step slice.
func (g Genome) Clone() Genome {
	g.Steps = append([]vm.Direction(nil), g.Steps...)
	return g
}

func TotalFitness(population []Genome) float64 {
	total := 0.0
	for _, g := range population {
		total += g.Fitness
	}
	return total
}
