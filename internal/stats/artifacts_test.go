package stats

import (
	"os"
	"path/filepath"
	"testing"

	"treasurehunt/internal/model"
)

func sampleDiagnostics() []model.GenerationDiagnostics {
	return []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 0.2, MeanFitness: 0.05, BestTreasures: 1},
		{Generation: 2, BestFitness: 0.4, MeanFitness: 0.1, BestTreasures: 2},
		{Generation: 3, BestFitness: 0.9, MeanFitness: 0.3, BestTreasures: 5, Solvers: 1},
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	runID := "run-123"
	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID: runID,
			Run: model.RunConfig{
				Subjects:            20,
				Generations:         3,
				MutationProbability: 0.01,
				Selection:           "roulette",
				Seed:                1,
			},
			Generations: 3,
		},
		Diagnostics: sampleDiagnostics(),
		Best:        &model.SolutionRecord{RunID: runID, Program: []byte{0xC0}, Steps: "H"},
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, file := range []string{configFile, fitnessHistoryFile, diagnosticsFile, bestSolutionFile} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}
	if _, err := os.Stat(filepath.Join(runDir, fitnessPlotFile)); !os.IsNotExist(err) {
		t.Fatalf("plot should only be written on request, stat err=%v", err)
	}

	exportedDir, err := ExportRunArtifacts(baseDir, runID, outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}
	for _, file := range []string{configFile, fitnessHistoryFile, diagnosticsFile, bestSolutionFile} {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}

	solution, ok, err := ReadBestSolution(baseDir, runID)
	if err != nil || !ok {
		t.Fatalf("read best solution: ok=%t err=%v", ok, err)
	}
	if solution.Steps != "H" || len(solution.Program) != 1 {
		t.Fatalf("unexpected best solution: %+v", solution)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestFitnessHistoryRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	runDir := filepath.Join(baseDir, "run-1")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := WriteFitnessHistory(filepath.Join(runDir, fitnessHistoryFile), sampleDiagnostics()); err != nil {
		t.Fatalf("write history: %v", err)
	}

	series, ok, err := ReadFitnessHistory(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read history: ok=%t err=%v", ok, err)
	}
	want := []float64{0.2, 0.4, 0.9}
	if len(series) != len(want) {
		t.Fatalf("unexpected series length: %v", series)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Fatalf("series[%d]=%f want=%f", i, series[i], want[i])
		}
	}

	if _, ok, err := ReadFitnessHistory(baseDir, "missing"); err != nil || ok {
		t.Fatalf("expected missing history, ok=%t err=%v", ok, err)
	}
}

func TestRunIndexNewestFirst(t *testing.T) {
	baseDir := t.TempDir()
	entries := []RunIndexEntry{
		{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{RunID: "b", CreatedAtUTC: "2026-01-02T00:00:00Z"},
		{RunID: "c", CreatedAtUTC: "2026-01-02T00:00:00Z"},
	}
	for _, e := range entries {
		if err := AppendRunIndex(baseDir, e); err != nil {
			t.Fatalf("append %s: %v", e.RunID, err)
		}
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z", BestFitness: 0.5}); err != nil {
		t.Fatalf("update a: %v", err)
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(index))
	}
	if index[0].RunID != "c" || index[1].RunID != "b" || index[2].RunID != "a" {
		t.Fatalf("unexpected order: %+v", index)
	}
	if index[2].BestFitness != 0.5 {
		t.Fatalf("expected updated entry, got %+v", index[2])
	}
}

func TestRunIndexOrdersByTimeNotText(t *testing.T) {
	baseDir := t.TempDir()
	// RFC3339Nano trims trailing zeros, so the later run has the longer string.
	for _, e := range []RunIndexEntry{
		{RunID: "older", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{RunID: "newer", CreatedAtUTC: "2026-01-01T00:00:00.5Z"},
	} {
		if err := AppendRunIndex(baseDir, e); err != nil {
			t.Fatalf("append %s: %v", e.RunID, err)
		}
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 2 || index[0].RunID != "newer" {
		t.Fatalf("expected newer run first, got %+v", index)
	}
}

func TestRunIndexKeepsAppendOrderOnDisk(t *testing.T) {
	baseDir := t.TempDir()
	for _, id := range []string{"first", "second", "third"} {
		if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: id, CreatedAtUTC: "2026-01-01T00:00:00Z"}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
		index, err := ListRunIndex(baseDir)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if index[0].RunID != id {
			t.Fatalf("after appending %s latest is %s", id, index[0].RunID)
		}
	}

	raw, err := readRunIndex(baseDir)
	if err != nil {
		t.Fatalf("read raw index: %v", err)
	}
	if raw[0].RunID != "first" || raw[2].RunID != "third" {
		t.Fatalf("unexpected on-disk order: %+v", raw)
	}
}

func TestReadGenerationDiagnostics(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config:      RunConfig{RunID: "run-d"},
		Diagnostics: sampleDiagnostics(),
	}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	diagnostics, ok, err := ReadGenerationDiagnostics(baseDir, "run-d")
	if err != nil || !ok {
		t.Fatalf("read diagnostics: ok=%t err=%v", ok, err)
	}
	if len(diagnostics) != 3 || diagnostics[2].Solvers != 1 {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics)
	}
	if _, ok, err := ReadGenerationDiagnostics(baseDir, "missing"); err != nil || ok {
		t.Fatalf("expected missing diagnostics, ok=%t err=%v", ok, err)
	}
}
