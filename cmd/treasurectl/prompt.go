package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"

	"treasurehunt/internal/render"
	api "treasurehunt/pkg/treasurehunt"
)

const continuePrompt = "Do you want to keep searching for a better solution? y/N: "

// askFunc reads one answer line. A nil askFunc declines every checkpoint.
type askFunc func(prompt string) (string, error)

func linerAsk(prompt string) (string, error) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	answer, err := ln.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", nil
	}
	return answer, err
}

func checkpointDecider(out io.Writer, ask askFunc) api.Decider {
	return func(_ context.Context, cp api.Checkpoint) (bool, error) {
		switch cp.Kind {
		case api.CheckpointSolutionFound:
			s := cp.Solution
			fmt.Fprintf(out, "\nSuccessful solution! Generation: %d, Fitness: %v, Steps: %s (%d), Iterations: %d\n",
				cp.Generation, s.Fitness, s.Steps, len(s.Steps), s.Iterations)
			fmt.Fprintln(out, render.Program(s.Program))
		case api.CheckpointTargetReached:
			fmt.Fprintln(out, "\nTarget generation reached!")
			if cp.HasSolution {
				s := cp.Solution
				fmt.Fprintf(out, "\nBest solution so far: Generation: %d, Fitness: %v, Steps: %s (%d), Treasures: %d, Iterations: %d\n",
					cp.Generation, s.Fitness, s.Steps, len(s.Steps), s.TreasuresFound, s.Iterations)
				fmt.Fprintln(out, render.Program(s.Program))
			}
		}

		if ask == nil {
			return false, nil
		}
		answer, err := ask(continuePrompt)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
	}
}

// progressPrinter redraws a single status line in place.
func progressPrinter(out io.Writer) api.ProgressFunc {
	return func(p api.Progress) {
		fmt.Fprint(out, "\r\t\t\t\t\t\t\t\r")
		if !p.HasBest {
			return
		}
		fmt.Fprintf(out, "Generation %s; F: %.4f, T: %d, S: %d, I: %d",
			humanize.Comma(int64(p.Generation)), p.Best.Fitness, p.Best.TreasuresFound, len(p.Best.Steps), p.Best.Iterations)
	}
}
