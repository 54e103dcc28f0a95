package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/tliron/commonlog"

	"treasurehunt/internal/model"
	"treasurehunt/internal/scape"
)

var log = commonlog.GetLogger("treasurehunt.evo")

const (
	DefaultChildrenPerPair = 2
	DefaultProgressEvery   = 500
)

type StopReason string

const (
	StopTargetReached    StopReason = "target_reached"
	StopSolutionAccepted StopReason = "solution_accepted"
)

// Progress is reported every ProgressEvery generations, before the
// generation is evaluated.
type Progress struct {
	Generation int
	Best       Genome
	HasBest    bool
}

type ProgressFunc func(Progress)

type MonitorConfig struct {
	Scape               scape.GoalScape
	Selector            Selector
	PopulationSize      int
	Generations         int
	MutationProbability float64
	ChildrenPerPair     int
	ProgressEvery       int
	Seed                uint64
	Decider             Decider
	Progress            ProgressFunc
}

type RunResult struct {
	Best               Genome
	HasBest            bool
	BestGeneration     int
	Generations        int
	BestByGeneration   []float64
	Diagnostics        []model.GenerationDiagnostics
	StopReason         StopReason
	SolutionGeneration int
}

type PopulationMonitor struct {
	cfg MonitorConfig
	rng *rand.Rand
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Scape == nil {
		return nil, fmt.Errorf("scape is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if math.IsNaN(cfg.MutationProbability) || cfg.MutationProbability < 0 || cfg.MutationProbability > 1 {
		return nil, fmt.Errorf("mutation probability must be in [0, 1], got %v", cfg.MutationProbability)
	}
	if cfg.Selector == nil {
		cfg.Selector = RouletteSelector{}
	}
	if cfg.ChildrenPerPair <= 0 {
		cfg.ChildrenPerPair = DefaultChildrenPerPair
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	if cfg.Decider == nil {
		cfg.Decider = StopDecider{}
	}

	return &PopulationMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}, nil
}

func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	population := make([]Genome, m.cfg.PopulationSize)
	for i := range population {
		population[i] = NewGenome(RandomInstructions(m.rng))
	}

	result := RunResult{
		BestByGeneration: make([]float64, 0, m.cfg.Generations),
		Diagnostics:      make([]model.GenerationDiagnostics, 0, m.cfg.Generations),
	}
	target := m.cfg.Generations
	generation := 0

	for {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		if generation >= target {
			ok, err := m.cfg.Decider.Continue(ctx, Checkpoint{
				Kind:       CheckpointTargetReached,
				Generation: generation,
				Genome:     result.Best.Clone(),
				HasGenome:  result.HasBest,
			})
			if err != nil {
				return RunResult{}, err
			}
			if !ok {
				result.Generations = generation
				result.StopReason = StopTargetReached
				return result, nil
			}
			log.Infof("target generation %d reached, continuing without limit", target)
			target = math.MaxInt
		}

		generation++
		if m.cfg.Progress != nil && generation%m.cfg.ProgressEvery == 0 {
			m.cfg.Progress(Progress{Generation: generation, Best: result.Best, HasBest: result.HasBest})
		}

		if err := m.evaluatePopulation(ctx, population); err != nil {
			return RunResult{}, err
		}
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].Fitness > population[j].Fitness
		})
		totalFitness := TotalFitness(population)

		diag := summarizeGeneration(population, generation, m.cfg.Scape.TotalTreasures())
		result.Diagnostics = append(result.Diagnostics, diag)
		result.BestByGeneration = append(result.BestByGeneration, diag.BestFitness)
		log.Debugf("generation %d best=%.4f mean=%.4f solvers=%d", generation, diag.BestFitness, diag.MeanFitness, diag.Solvers)

		if idx := firstSolver(population, m.cfg.Scape.TotalTreasures()); idx >= 0 &&
			(!result.HasBest || population[idx].Fitness > result.Best.Fitness) {
			solution := population[idx].Clone()
			log.Noticef("solution in generation %d fitness=%.4f steps=%d", generation, solution.Fitness, len(solution.Steps))
			ok, err := m.cfg.Decider.Continue(ctx, Checkpoint{
				Kind:       CheckpointSolutionFound,
				Generation: generation,
				Genome:     solution.Clone(),
				HasGenome:  true,
			})
			if err != nil {
				return RunResult{}, err
			}
			if !ok {
				result.Best = solution
				result.HasBest = true
				result.BestGeneration = generation
				result.SolutionGeneration = generation
				result.Generations = generation
				result.StopReason = StopSolutionAccepted
				return result, nil
			}
		}

		next, err := m.nextGeneration(population, totalFitness)
		if err != nil {
			return RunResult{}, err
		}

		if !result.HasBest || population[0].Fitness > result.Best.Fitness {
			result.Best = population[0].Clone()
			result.HasBest = true
			result.BestGeneration = generation
		}
		population = next
	}
}

func (m *PopulationMonitor) evaluatePopulation(ctx context.Context, population []Genome) error {
	for i := range population {
		fitness, trace, err := m.cfg.Scape.Evaluate(ctx, population[i].Program)
		if err != nil {
			return err
		}
		population[i].Record(fitness, trace)
	}
	return nil
}

func (m *PopulationMonitor) nextGeneration(ranked []Genome, totalFitness float64) ([]Genome, error) {
	size := m.cfg.PopulationSize
	next := make([]Genome, 0, size)
	for len(next) < size {
		a, b, err := m.cfg.Selector.PickParents(m.rng, ranked, totalFitness)
		if err != nil {
			return nil, fmt.Errorf("%s selection: %w", m.cfg.Selector.Name(), err)
		}
		children := min(m.cfg.ChildrenPerPair, size-len(next))
		for c := 0; c < children; c++ {
			child := Reproduce(ranked[a].Program, ranked[b].Program, m.cfg.MutationProbability, m.rng)
			next = append(next, NewGenome(child))
		}
	}
	return next, nil
}

func firstSolver(ranked []Genome, totalTreasures int) int {
	for i, g := range ranked {
		if g.TreasuresFound == totalTreasures {
			return i
		}
	}
	return -1
}

func summarizeGeneration(ranked []Genome, generation, totalTreasures int) model.GenerationDiagnostics {
	if len(ranked) == 0 {
		return model.GenerationDiagnostics{Generation: generation}
	}

	total := 0.0
	minFitness := ranked[0].Fitness
	bestTreasures := 0
	solvers := 0
	for _, g := range ranked {
		total += g.Fitness
		if g.Fitness < minFitness {
			minFitness = g.Fitness
		}
		if g.TreasuresFound > bestTreasures {
			bestTreasures = g.TreasuresFound
		}
		if g.TreasuresFound == totalTreasures {
			solvers++
		}
	}

	return model.GenerationDiagnostics{
		Generation:    generation,
		BestFitness:   ranked[0].Fitness,
		MeanFitness:   total / float64(len(ranked)),
		MinFitness:    minFitness,
		BestTreasures: bestTreasures,
		Solvers:       solvers,
	}
}
