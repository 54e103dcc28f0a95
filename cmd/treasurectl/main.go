package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"treasurehunt/internal/render"
	"treasurehunt/internal/storage"
	"treasurehunt/internal/vm"
	api "treasurehunt/pkg/treasurehunt"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "treasurehunt.db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var argErr *ArgError
		if errors.As(err, &argErr) || errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("treasurectl", flag.ContinueOnError)
	verbosity := global.Int("v", 0, "log verbosity (0 quiet, 1 info, 2 debug)")
	logPath := global.String("log", "", "write logs to this file instead of stderr")
	if err := global.Parse(args); err != nil {
		return err
	}
	configureLogging(*verbosity, *logPath)

	args = global.Args()
	if len(args) == 0 {
		return usageError("missing command (run|runs|show|replay|grid|export)")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "replay":
		return runReplay(ctx, args[1:])
	case "grid":
		return runGrid(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func configureLogging(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &path)
}

type storeFlags struct {
	kind    *string
	dbPath  *string
	runsDir *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:    fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:  fs.String("db-path", defaultDBPath, "sqlite database path"),
		runsDir: fs.String("runs-dir", defaultRunsDir, "run artifacts directory"),
	}
}

func (f storeFlags) client() (*api.Client, error) {
	return api.New(api.Options{
		StoreKind:    *f.kind,
		DBPath:       *f.dbPath,
		ArtifactsDir: *f.runsDir,
		ExportsDir:   defaultExportsDir,
	})
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config path (.toml, .yaml, .yml or .json)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	subjects := fs.Int("subjects", 100, "population size (minimum 20)")
	generations := fs.Int("gens", 1000, "target generation count")
	mutation := fs.Float64("mutation", 0.01, "per-bit mutation probability")
	selection := fs.String("selection", "roulette", "parent selection: roulette|tournament (or 0|1)")
	seed := fs.Uint64("seed", 0, "rng seed (random when unset)")
	children := fs.Int("children", 2, "children per parent pair")
	progressEvery := fs.Int("progress-every", 500, "progress line cadence in generations")
	plot := fs.Bool("plot", false, "write a fitness plot into the run artifacts")
	noPrompt := fs.Bool("no-prompt", false, "never ask to keep searching; stop at the first checkpoint")
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req := api.RunRequest{
		Subjects:            *subjects,
		Generations:         *generations,
		MutationProbability: *mutation,
		Selection:           *selection,
		ChildrenPerPair:     *children,
		ProgressEvery:       *progressEvery,
	}
	seedSet := false
	if *configPath != "" {
		cfg, err := loadRunConfig(*configPath)
		if err != nil {
			return err
		}
		seedSet = cfg.apply(&req)
	}
	if positional := fs.Args(); len(positional) > 0 {
		if err := parsePositional(positional, &req); err != nil {
			return err
		}
	}
	if err := overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":         *runID,
		"subjects":       *subjects,
		"gens":           *generations,
		"mutation":       *mutation,
		"selection":      *selection,
		"seed":           *seed,
		"children":       *children,
		"progress-every": *progressEvery,
		"plot":           *plot,
	}); err != nil {
		return err
	}
	if !seedSet && !setFlags["seed"] {
		req.Seed = uint64(time.Now().UnixNano())
	}
	if err := validateRunRequest(req); err != nil {
		return err
	}
	req.Selection, _ = parseSelection("selection", req.Selection)

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := render.Grid(os.Stdout, client.Grid()); err != nil {
		return err
	}
	fmt.Println()

	var ask askFunc
	if !*noPrompt {
		ask = linerAsk
	}
	req.Decider = checkpointDecider(os.Stdout, ask)
	req.Progress = progressPrinter(os.Stdout)

	started := time.Now()
	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("run completed run_id=%s subjects=%d gens=%d mutation=%g selection=%s seed=%d\n",
		summary.RunID, req.Subjects, req.Generations, req.MutationProbability, req.Selection, req.Seed)
	fmt.Printf("generations_run=%d stop_reason=%s elapsed=%s\n",
		summary.Generations, summary.StopReason, time.Since(started).Round(time.Millisecond))
	if summary.SolutionGeneration > 0 {
		fmt.Printf("solution_generation=%d\n", summary.SolutionGeneration)
	}
	if summary.HasBest {
		printSolution(summary.Best)
	}
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, api.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	for _, item := range items {
		created := item.CreatedAtUTC
		if ts, err := time.Parse(time.RFC3339Nano, item.CreatedAtUTC); err == nil {
			created = humanize.Time(ts)
		}
		fmt.Printf("run_id=%s created=%q subjects=%d gens=%s ran=%s selection=%s seed=%d best_fitness=%.6f treasures=%d\n",
			item.RunID,
			created,
			item.Subjects,
			humanize.Comma(int64(item.Generations)),
			humanize.Comma(int64(item.GenerationsRun)),
			item.Selection,
			item.Seed,
			item.BestFitness,
			item.BestTreasures,
		)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id (defaults to the most recent run)")
	disassemble := fs.Bool("disassemble", false, "print one mnemonic per memory cell")
	history := fs.Bool("history", false, "print per-generation diagnostics")
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	info, err := client.Describe(ctx, *runID)
	if err != nil {
		return err
	}
	solution, err := client.Best(ctx, info.RunID)
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s subjects=%d gens=%d ran=%d selection=%s seed=%d\n",
		info.RunID, info.Subjects, info.Generations, info.GenerationsRun, info.Selection, info.Seed)
	fmt.Printf("best_generation=%d\n", solution.Generation)
	printSolution(solution)
	if *history {
		diagnostics, err := client.Diagnostics(ctx, info.RunID)
		if err != nil {
			return err
		}
		for _, d := range diagnostics {
			fmt.Printf("generation=%d best_fitness=%.6f mean_fitness=%.6f min_fitness=%.6f best_treasures=%d solvers=%d\n",
				d.Generation, d.BestFitness, d.MeanFitness, d.MinFitness, d.BestTreasures, d.Solvers)
		}
	}
	if *disassemble {
		printDisassembly(solution.Program)
	}
	return nil
}

func runReplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	programText := fs.String("program", "", "program as 128 hex digits or a bracketed decimal list")
	runID := fs.String("run-id", "", "replay the best solution of this run instead")
	disassemble := fs.Bool("disassemble", false, "print one mnemonic per memory cell")
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *programText == "" && fs.NArg() > 0 {
		*programText = strings.Join(fs.Args(), " ")
	}
	if *programText != "" && *runID != "" {
		return usageError("use either -program or -run-id")
	}

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var program vm.Program
	if *programText != "" {
		program, err = render.ParseProgram(*programText)
		if err != nil {
			return &ArgError{Kind: InvalidArgument, Arg: "program", Value: *programText, Reason: err.Error()}
		}
	} else {
		solution, err := client.Best(ctx, *runID)
		if err != nil {
			return err
		}
		program = solution.Program
	}

	replay, err := client.Replay(ctx, program)
	if err != nil {
		return err
	}
	fmt.Printf("start=%d,%d fitness=%.6f treasures=%d/%d iterations=%d steps=%s step_count=%d\n",
		replay.Start.X, replay.Start.Y, replay.Fitness, replay.TreasuresFound, replay.TotalTreasures, replay.Iterations, replay.Steps, len(replay.Steps))
	fmt.Printf("program_hex=%s\n", render.Hex(replay.Program))
	if *disassemble {
		printDisassembly(replay.Program)
	}
	return nil
}

func runGrid(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := api.New(api.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	return render.Grid(os.Stdout, client.Grid())
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", defaultExportsDir, "export destination directory")
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, api.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
	return nil
}

func printSolution(s api.Solution) {
	fmt.Printf("best_fitness=%.6f treasures=%d iterations=%d steps=%s step_count=%d\n",
		s.Fitness, s.TreasuresFound, s.Iterations, s.Steps, len(s.Steps))
	fmt.Printf("program=%s\n", render.Program(s.Program))
	fmt.Printf("program_hex=%s\n", render.Hex(s.Program))
}

func printDisassembly(p vm.Program) {
	for i, line := range render.Disassemble(p) {
		fmt.Printf("%02d: %s\n", i, line)
	}
}
