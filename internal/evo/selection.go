package evo

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrEmptyPopulation = errors.New("population is empty")

// Selector chooses two parents from a scored population and returns their
// positions. Both positions may be equal.
type Selector interface {
	Name() string
	PickParents(rng *rand.Rand, population []Genome, totalFitness float64) (int, int, error)
}

// RouletteSelector picks parents with probability proportional to fitness.
// totalFitness must be the sum over population; it is not recomputed.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) PickParents(rng *rand.Rand, population []Genome, totalFitness float64) (int, int, error) {
	if err := checkSelectionInput(rng, population); err != nil {
		return 0, 0, err
	}
	a := spinRoulette(rng, population, totalFitness)
	b := spinRoulette(rng, population, totalFitness)
	return a, b, nil
}

// spinRoulette draws r from [0, totalFitness). The half-open draw loses only
// the single point r == totalFitness from the closed interval.
func spinRoulette(rng *rand.Rand, population []Genome, totalFitness float64) int {
	r := rng.Float64() * totalFitness
	cumulative := 0.0
	for i, g := range population {
		cumulative += g.Fitness
		if cumulative > r {
			return i
		}
	}
	// Reached when every fitness is zero, or when totalFitness overstates the
	// population's sum.
	return len(population) - 1
}

// TournamentSelector compares two uniformly drawn candidates per parent. The
// first draw wins only when strictly fitter.
type TournamentSelector struct{}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (TournamentSelector) PickParents(rng *rand.Rand, population []Genome, _ float64) (int, int, error) {
	if err := checkSelectionInput(rng, population); err != nil {
		return 0, 0, err
	}
	a := runTournament(rng, population)
	b := runTournament(rng, population)
	return a, b, nil
}

func runTournament(rng *rand.Rand, population []Genome) int {
	first := rng.IntN(len(population))
	second := rng.IntN(len(population))
	if population[first].Fitness > population[second].Fitness {
		return first
	}
	return second
}

func checkSelectionInput(rng *rand.Rand, population []Genome) error {
	if rng == nil {
		return fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return ErrEmptyPopulation
	}
	return nil
}

const (
	SelectionRoulette   = 0
	SelectionTournament = 1
)

// SelectorFromCode maps the numeric selection method used on the command line.
func SelectorFromCode(code int) (Selector, error) {
	switch code {
	case SelectionRoulette:
		return RouletteSelector{}, nil
	case SelectionTournament:
		return TournamentSelector{}, nil
	default:
		return nil, fmt.Errorf("unsupported selection method: %d", code)
	}
}

func SelectorFromName(name string) (Selector, error) {
	switch name {
	case "roulette", "0":
		return RouletteSelector{}, nil
	case "tournament", "1":
		return TournamentSelector{}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
