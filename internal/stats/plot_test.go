package stats

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFitnessPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	if err := WriteFitnessPlot(path, "test", sampleDiagnostics()); err != nil {
		t.Fatalf("write plot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty plot")
	}
}

func TestWriteFitnessPlotRejectsEmptyHistory(t *testing.T) {
	if err := WriteFitnessPlot(filepath.Join(t.TempDir(), "fitness.png"), "empty", nil); err == nil {
		t.Fatal("expected error for empty history")
	}
}
