package scape

import (
	"context"
	"errors"

	"treasurehunt/internal/grid"
	"treasurehunt/internal/vm"
)

// TreasureScape runs programs on a fixed grid from its surveyed start tile.
type TreasureScape struct {
	area   grid.Grid
	layout grid.Layout
}

func NewTreasureScape(area grid.Grid) (*TreasureScape, error) {
	layout := grid.Survey(area)
	if !layout.HasStart {
		return nil, errors.New("grid has no player start tile")
	}
	if layout.Treasures == 0 {
		return nil, errors.New("grid has no treasure tiles")
	}
	return &TreasureScape{area: area.Clone(), layout: layout}, nil
}

// NewReferenceScape wraps the built-in 7x7 layout.
func NewReferenceScape() *TreasureScape {
	s, err := NewTreasureScape(grid.Build())
	if err != nil {
		panic(err)
	}
	return s
}

func (*TreasureScape) Name() string {
	return "treasure"
}

func (s *TreasureScape) Grid() grid.Grid {
	return s.area.Clone()
}

func (s *TreasureScape) Layout() grid.Layout {
	return s.layout
}

func (s *TreasureScape) TotalTreasures() int {
	return s.layout.Treasures
}

func (s *TreasureScape) Evaluate(ctx context.Context, program vm.Program) (Fitness, Trace, error) {
	if err := ctx.Err(); err != nil {
		return 0, Trace{}, err
	}
	res := vm.Run(program, s.area, s.layout.Start, s.layout.Treasures)
	fitness := CalculateFitness(len(res.Steps), res.TreasuresFound, s.layout.Treasures)
	return Fitness(fitness), Trace{
		Iterations:     res.Iterations,
		TreasuresFound: res.TreasuresFound,
		Steps:          res.Steps,
	}, nil
}
