package scape

import (
	"context"

	"treasurehunt/internal/vm"
)

type Fitness float64

// Trace is the per-run evaluation record written back onto a genome.
type Trace struct {
	Iterations     int
	TreasuresFound int
	Steps          []vm.Direction
}

// Scape scores a program against an environment.
type Scape interface {
	Name() string
	Evaluate(ctx context.Context, program vm.Program) (Fitness, Trace, error)
}

// GoalScape is a scape whose task is complete once TotalTreasures have been
// collected.
type GoalScape interface {
	Scape
	TotalTreasures() int
}
