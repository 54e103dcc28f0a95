package evo

import "context"

type CheckpointKind string

const (
	// CheckpointSolutionFound fires when a genome collects every treasure
	// and beats the best genome seen so far.
	CheckpointSolutionFound CheckpointKind = "solution_found"
	// CheckpointTargetReached fires once the configured generation count
	// has been evaluated.
	CheckpointTargetReached CheckpointKind = "target_reached"
)

type Checkpoint struct {
	Kind       CheckpointKind
	Generation int
	Genome     Genome
	HasGenome  bool
}

// Decider is asked between generations whether the search should go on.
type Decider interface {
	Continue(ctx context.Context, checkpoint Checkpoint) (bool, error)
}

type DeciderFunc func(ctx context.Context, checkpoint Checkpoint) (bool, error)

func (f DeciderFunc) Continue(ctx context.Context, checkpoint Checkpoint) (bool, error) {
	return f(ctx, checkpoint)
}

// StopDecider ends the run at the first checkpoint.
type StopDecider struct{}

func (StopDecider) Continue(context.Context, Checkpoint) (bool, error) {
	return false, nil
}
