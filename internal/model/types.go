package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" cbor:"schema_version"`
	CodecVersion  int `json:"codec_version" cbor:"codec_version"`
}

// RunConfig is the parameter set a run was started with.
type RunConfig struct {
	Subjects            int     `json:"subjects"`
	Generations         int     `json:"generations"`
	MutationProbability float64 `json:"mutation_probability"`
	Selection           string  `json:"selection"`
	Seed                uint64  `json:"seed"`
	ChildrenPerPair     int     `json:"children_per_pair"`
}

// RunRecord summarises a finished run. Populations themselves are never
// stored.
type RunRecord struct {
	VersionedRecord
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	Config             RunConfig `json:"config"`
	GenerationsRun     int       `json:"generations_run"`
	StopReason         string    `json:"stop_reason"`
	SolutionGeneration int       `json:"solution_generation,omitempty"`
	BestFitness        float64   `json:"best_fitness"`
	BestTreasures      int       `json:"best_treasures"`
	BestSteps          int       `json:"best_steps"`
	BestIterations     int       `json:"best_iterations"`
}

// SolutionRecord is the best program of a run together with its trace.
type SolutionRecord struct {
	VersionedRecord
	RunID          string  `json:"run_id" cbor:"run_id"`
	Generation     int     `json:"generation" cbor:"generation"`
	Program        []byte  `json:"program" cbor:"program"`
	Fitness        float64 `json:"fitness" cbor:"fitness"`
	TreasuresFound int     `json:"treasures_found" cbor:"treasures_found"`
	Iterations     int     `json:"iterations" cbor:"iterations"`
	Steps          string  `json:"steps" cbor:"steps"`
}

type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	BestFitness   float64 `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	MinFitness    float64 `json:"min_fitness"`
	BestTreasures int     `json:"best_treasures"`
	Solvers       int     `json:"solvers"`
}
