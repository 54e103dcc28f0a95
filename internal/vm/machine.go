package vm

import (
	"treasurehunt/internal/grid"
)

const (
	// ProgramSize is the number of addressable cells; the program executes
	// from the same memory it modifies.
	ProgramSize = 64
	// MaxIterations bounds every run regardless of jumps.
	MaxIterations = 500
)

type Program [ProgramSize]byte

// Result is the outcome of a single run.
type Result struct {
	Iterations     int
	TreasuresFound int
	Steps          []Direction
}

// Run executes program against a clone of g, starting at start, until the
// iteration bound is hit, the instruction pointer falls off the end, every
// treasure in treasureGoal has been collected, or a move leaves the grid.
//
// The program is received by value: increments and decrements rewrite the
// local copy only.
func Run(program Program, g grid.Grid, start grid.Position, treasureGoal int) Result {
	area := g.Clone()
	memory := program
	pos := start

	var (
		ip         int
		iterations int
		found      int
		steps      []Direction
	)

	for iterations < MaxIterations && ip < ProgramSize && found < treasureGoal {
		op, operand := Decode(memory[ip])

		switch op {
		case OpIncrement:
			memory[operand] = Increment(memory[operand])
		case OpDecrement:
			memory[operand] = Decrement(memory[operand])
		case OpJump:
			ip = int(operand)
			iterations++
			continue
		case OpMove:
			dir := DirectionOf(operand)
			steps = append(steps, dir)
			dx, dy := dir.delta()
			pos = grid.Position{X: pos.X + dx, Y: pos.Y + dy}
			if !area.Contains(pos) {
				iterations++
				return Result{Iterations: iterations, TreasuresFound: found, Steps: steps}
			}
			if area.At(pos) == grid.Treasure {
				area.Set(pos, grid.Empty)
				found++
			}
		}

		ip++
		iterations++
	}

	return Result{Iterations: iterations, TreasuresFound: found, Steps: steps}
}
