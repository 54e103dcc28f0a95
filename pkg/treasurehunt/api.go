package treasurehunt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"treasurehunt/internal/evo"
	"treasurehunt/internal/grid"
	"treasurehunt/internal/model"
	"treasurehunt/internal/render"
	"treasurehunt/internal/scape"
	"treasurehunt/internal/stats"
	"treasurehunt/internal/storage"
	"treasurehunt/internal/vm"
)

var log = commonlog.GetLogger("treasurehunt.api")

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "treasurehunt.db"

	defaultSubjects    = 100
	defaultGenerations = 1000
	defaultSelection   = "roulette"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
}

type Client struct {
	store storage.Store
	scape *scape.TreasureScape

	artifactsDir string
	exportsDir   string
}

// Solution is a program together with the trace it produced on the grid.
type Solution struct {
	RunID          string
	Generation     int
	Program        vm.Program
	Fitness        float64
	TreasuresFound int
	Iterations     int
	Steps          string
}

type CheckpointKind string

const (
	CheckpointSolutionFound CheckpointKind = CheckpointKind(evo.CheckpointSolutionFound)
	CheckpointTargetReached CheckpointKind = CheckpointKind(evo.CheckpointTargetReached)
)

type Checkpoint struct {
	Kind        CheckpointKind
	Generation  int
	Solution    Solution
	HasSolution bool
}

// Decider returns true to keep searching past a checkpoint. A nil Decider
// stops at the first one.
type Decider func(ctx context.Context, checkpoint Checkpoint) (bool, error)

type Progress struct {
	Generation int
	Best       Solution
	HasBest    bool
}

type ProgressFunc func(Progress)

type RunRequest struct {
	RunID               string
	Subjects            int
	Generations         int
	MutationProbability float64
	Selection           string
	Seed                uint64
	ChildrenPerPair     int
	ProgressEvery       int
	Decider             Decider
	Progress            ProgressFunc
	Plot                bool
}

type RunSummary struct {
	RunID              string
	ArtifactsDir       string
	Generations        int
	StopReason         string
	SolutionGeneration int
	BestByGeneration   []float64
	Best               Solution
	HasBest            bool
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Subjects       int
	Generations    int
	GenerationsRun int
	Selection      string
	Seed           uint64
	BestFitness    float64
	BestTreasures  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type Replay struct {
	Program        vm.Program
	Fitness        float64
	TreasuresFound int
	TotalTreasures int
	Start          grid.Position
	Iterations     int
	Steps          string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, fmt.Errorf("init %s store: %w", storeKind, err)
	}

	return &Client{
		store:        store,
		scape:        scape.NewReferenceScape(),
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Grid returns a copy of the area programs are evaluated on.
func (c *Client) Grid() grid.Grid {
	return c.scape.Grid()
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Subjects == 0 {
		req.Subjects = defaultSubjects
	}
	if req.Generations == 0 {
		req.Generations = defaultGenerations
	}
	if req.Selection == "" {
		req.Selection = defaultSelection
	}
	if req.ChildrenPerPair <= 0 {
		req.ChildrenPerPair = evo.DefaultChildrenPerPair
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	selector, err := evo.SelectorFromName(req.Selection)
	if err != nil {
		return RunSummary{}, err
	}

	monitorCfg := evo.MonitorConfig{
		Scape:               c.scape,
		Selector:            selector,
		PopulationSize:      req.Subjects,
		Generations:         req.Generations,
		MutationProbability: req.MutationProbability,
		ChildrenPerPair:     req.ChildrenPerPair,
		ProgressEvery:       req.ProgressEvery,
		Seed:                req.Seed,
	}
	if req.Decider != nil {
		decide := req.Decider
		runID := req.RunID
		monitorCfg.Decider = evo.DeciderFunc(func(ctx context.Context, cp evo.Checkpoint) (bool, error) {
			return decide(ctx, Checkpoint{
				Kind:        CheckpointKind(cp.Kind),
				Generation:  cp.Generation,
				Solution:    solutionFromGenome(runID, cp.Generation, cp.Genome),
				HasSolution: cp.HasGenome,
			})
		})
	}
	if req.Progress != nil {
		report := req.Progress
		runID := req.RunID
		monitorCfg.Progress = func(p evo.Progress) {
			report(Progress{
				Generation: p.Generation,
				Best:       solutionFromGenome(runID, 0, p.Best),
				HasBest:    p.HasBest,
			})
		}
	}

	monitor, err := evo.NewPopulationMonitor(monitorCfg)
	if err != nil {
		return RunSummary{}, err
	}

	started := time.Now().UTC()
	log.Infof("run %s: subjects=%d generations=%d mutation=%g selection=%s seed=%d",
		req.RunID, req.Subjects, req.Generations, req.MutationProbability, selector.Name(), req.Seed)
	result, err := monitor.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	log.Infof("run %s finished after %d generations (%s) in %s",
		req.RunID, result.Generations, result.StopReason, time.Since(started).Round(time.Millisecond))

	runConfig := model.RunConfig{
		Subjects:            req.Subjects,
		Generations:         req.Generations,
		MutationProbability: req.MutationProbability,
		Selection:           selector.Name(),
		Seed:                req.Seed,
		ChildrenPerPair:     req.ChildrenPerPair,
	}
	record := model.RunRecord{
		VersionedRecord:    storage.CurrentVersion(),
		ID:                 req.RunID,
		CreatedAt:          started,
		Config:             runConfig,
		GenerationsRun:     result.Generations,
		StopReason:         string(result.StopReason),
		SolutionGeneration: result.SolutionGeneration,
	}

	best := solutionFromGenome(req.RunID, result.BestGeneration, result.Best)
	var solutionRecord *model.SolutionRecord
	if result.HasBest {
		record.BestFitness = best.Fitness
		record.BestTreasures = best.TreasuresFound
		record.BestSteps = len(best.Steps)
		record.BestIterations = best.Iterations
		solutionRecord = &model.SolutionRecord{
			VersionedRecord: storage.CurrentVersion(),
			RunID:           req.RunID,
			Generation:      best.Generation,
			Program:         append([]byte(nil), best.Program[:]...),
			Fitness:         best.Fitness,
			TreasuresFound:  best.TreasuresFound,
			Iterations:      best.Iterations,
			Steps:           best.Steps,
		}
	}

	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}
	if solutionRecord != nil {
		if err := c.store.SaveSolution(ctx, *solutionRecord); err != nil {
			return RunSummary{}, fmt.Errorf("save solution: %w", err)
		}
	}
	if err := c.store.SaveFitnessHistory(ctx, req.RunID, result.BestByGeneration); err != nil {
		return RunSummary{}, fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, req.RunID, result.Diagnostics); err != nil {
		return RunSummary{}, fmt.Errorf("save diagnostics: %w", err)
	}

	createdAt := started.Format(time.RFC3339Nano)
	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:        req.RunID,
			CreatedAtUTC: createdAt,
			Run:          runConfig,
			StopReason:   string(result.StopReason),
			Generations:  result.Generations,
		},
		Diagnostics: result.Diagnostics,
		Best:        solutionRecord,
		Plot:        req.Plot,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:          req.RunID,
		Subjects:       req.Subjects,
		Generations:    req.Generations,
		GenerationsRun: result.Generations,
		Selection:      selector.Name(),
		Seed:           req.Seed,
		BestFitness:    record.BestFitness,
		BestTreasures:  record.BestTreasures,
		CreatedAtUTC:   createdAt,
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:              req.RunID,
		ArtifactsDir:       filepath.Clean(runDir),
		Generations:        result.Generations,
		StopReason:         string(result.StopReason),
		SolutionGeneration: result.SolutionGeneration,
		BestByGeneration:   append([]float64(nil), result.BestByGeneration...),
		Best:               best,
		HasBest:            result.HasBest,
	}, nil
}

// Runs lists runs newest first from the store, falling back to the artifact
// run index when the store holds none (e.g. a fresh memory store).
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	records, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		out := make([]RunItem, 0, len(records))
		for _, r := range records {
			out = append(out, runItemFromRecord(r))
		}
		return out, nil
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, runItemFromIndex(e))
	}
	return out, nil
}

// Describe returns the summary of one run; an empty id selects the latest.
func (c *Client) Describe(ctx context.Context, runID string) (RunItem, error) {
	runID, err := c.resolveRunID(ctx, runID)
	if err != nil {
		return RunItem{}, err
	}

	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return RunItem{}, err
	}
	if ok {
		return runItemFromRecord(record), nil
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return RunItem{}, err
	}
	for _, e := range entries {
		if e.RunID == runID {
			return runItemFromIndex(e), nil
		}
	}
	return RunItem{}, fmt.Errorf("run not found: %s", runID)
}

// Best returns the best solution of a run. An empty run id selects the most
// recent run. The store is consulted first, then the run's artifacts.
func (c *Client) Best(ctx context.Context, runID string) (Solution, error) {
	runID, err := c.resolveRunID(ctx, runID)
	if err != nil {
		return Solution{}, err
	}

	record, ok, err := c.store.GetSolution(ctx, runID)
	if err != nil {
		return Solution{}, err
	}
	if !ok {
		record, ok, err = stats.ReadBestSolution(c.artifactsDir, runID)
		if err != nil {
			return Solution{}, err
		}
	}
	if !ok {
		return Solution{}, fmt.Errorf("no solution recorded for run id: %s", runID)
	}
	if len(record.Program) != vm.ProgramSize {
		return Solution{}, fmt.Errorf("run %s: program has %d cells, want %d", runID, len(record.Program), vm.ProgramSize)
	}

	if _, err := render.ParseSteps(record.Steps); err != nil {
		return Solution{}, fmt.Errorf("run %s: stored trace: %w", runID, err)
	}

	var program vm.Program
	copy(program[:], record.Program)
	return Solution{
		RunID:          record.RunID,
		Generation:     record.Generation,
		Program:        program,
		Fitness:        record.Fitness,
		TreasuresFound: record.TreasuresFound,
		Iterations:     record.Iterations,
		Steps:          record.Steps,
	}, nil
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, error) {
	runID, err := c.resolveRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadFitnessHistory(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		diagnostics, ok, err = stats.ReadGenerationDiagnostics(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("generation diagnostics not found for run id: %s", runID)
	}
	return append([]model.GenerationDiagnostics(nil), diagnostics...), nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID, err := c.resolveRunID(ctx, req.RunID)
	if err != nil {
		return ExportSummary{}, err
	}
	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// Replay executes a program once on the grid.
func (c *Client) Replay(ctx context.Context, program vm.Program) (Replay, error) {
	fitness, trace, err := c.scape.Evaluate(ctx, program)
	if err != nil {
		return Replay{}, err
	}
	return Replay{
		Program:        program,
		Fitness:        float64(fitness),
		TreasuresFound: trace.TreasuresFound,
		TotalTreasures: c.scape.TotalTreasures(),
		Start:          c.scape.Layout().Start,
		Iterations:     trace.Iterations,
		Steps:          render.Steps(trace.Steps),
	}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	records, err := c.store.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(records) > 0 {
		return records[0].ID, nil
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func runItemFromRecord(r model.RunRecord) RunItem {
	return RunItem{
		RunID:          r.ID,
		CreatedAtUTC:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		Subjects:       r.Config.Subjects,
		Generations:    r.Config.Generations,
		GenerationsRun: r.GenerationsRun,
		Selection:      r.Config.Selection,
		Seed:           r.Config.Seed,
		BestFitness:    r.BestFitness,
		BestTreasures:  r.BestTreasures,
	}
}

func runItemFromIndex(e stats.RunIndexEntry) RunItem {
	return RunItem{
		RunID:          e.RunID,
		CreatedAtUTC:   e.CreatedAtUTC,
		Subjects:       e.Subjects,
		Generations:    e.Generations,
		GenerationsRun: e.GenerationsRun,
		Selection:      e.Selection,
		Seed:           e.Seed,
		BestFitness:    e.BestFitness,
		BestTreasures:  e.BestTreasures,
	}
}

func solutionFromGenome(runID string, generation int, g evo.Genome) Solution {
	return Solution{
		RunID:          runID,
		Generation:     generation,
		Program:        g.Program,
		Fitness:        g.Fitness,
		TreasuresFound: g.TreasuresFound,
		Iterations:     g.Iterations,
		Steps:          render.Steps(g.Steps),
	}
}
