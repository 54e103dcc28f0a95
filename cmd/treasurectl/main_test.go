package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"treasurehunt/internal/stats"
)

func TestRunCommandLifecycle(t *testing.T) {
	ctx := context.Background()
	runsDir := filepath.Join(t.TempDir(), "runs")

	if err := run(ctx, []string{"run", "-store", "memory", "-runs-dir", runsDir, "-no-prompt", "-seed", "11", "-gens", "3", "20", "3", "0.05", "0"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := stats.ListRunIndex(runsDir)
	if err != nil {
		t.Fatalf("list run index: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one run, got %d", len(entries))
	}
	if entries[0].Subjects != 20 || entries[0].Selection != "roulette" || entries[0].Seed != 11 {
		t.Fatalf("unexpected run entry: %+v", entries[0])
	}

	for _, args := range [][]string{
		{"runs", "-store", "memory", "-runs-dir", runsDir},
		{"runs", "-store", "memory", "-runs-dir", runsDir, "-json"},
		{"show", "-store", "memory", "-runs-dir", runsDir, "-disassemble", "-history"},
		{"replay", "-store", "memory", "-runs-dir", runsDir, "-run-id", entries[0].RunID},
		{"replay", "-store", "memory", "-runs-dir", runsDir, "-program", "[192, 193]"},
		{"export", "-store", "memory", "-runs-dir", runsDir, "-latest", "-out", filepath.Join(t.TempDir(), "exports")},
		{"grid"},
	} {
		if err := run(ctx, args); err != nil {
			t.Fatalf("%s: %v", strings.Join(args, " "), err)
		}
	}
}

func TestRunCommandWritesPlot(t *testing.T) {
	runsDir := filepath.Join(t.TempDir(), "runs")
	if err := run(context.Background(), []string{"run", "-store", "memory", "-runs-dir", runsDir, "-no-prompt", "-subjects", "20", "-gens", "2", "-seed", "4", "-plot"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := stats.ListRunIndex(runsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("list run index: %v %+v", err, entries)
	}
	if _, err := os.Stat(filepath.Join(runsDir, entries[0].RunID, "fitness.png")); err != nil {
		t.Fatalf("expected fitness plot: %v", err)
	}
}

func TestRunCommandRejectsBadArguments(t *testing.T) {
	runsDir := filepath.Join(t.TempDir(), "runs")
	err := run(context.Background(), []string{"run", "-store", "memory", "-runs-dir", runsDir, "-no-prompt", "10", "5", "0.1", "0"})
	var argErr *ArgError
	if !errors.As(err, &argErr) || argErr.Kind != OutOfRange || argErr.Arg != "subjects" {
		t.Fatalf("expected subjects out of range, got %v", err)
	}
	if _, statErr := os.Stat(runsDir); !os.IsNotExist(statErr) {
		t.Fatalf("rejected run should not write artifacts, stat err=%v", statErr)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"bogus"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), nil); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestReplayRejectsBadProgram(t *testing.T) {
	err := run(context.Background(), []string{"replay", "-store", "memory", "-runs-dir", t.TempDir(), "-program", "zz"})
	var argErr *ArgError
	if !errors.As(err, &argErr) || argErr.Kind != InvalidArgument {
		t.Fatalf("expected invalid program error, got %v", err)
	}
}
