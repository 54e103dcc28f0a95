package main

import (
	"os"
	"path/filepath"
	"testing"

	api "treasurehunt/pkg/treasurehunt"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunConfigFormats(t *testing.T) {
	cases := map[string]string{
		"run.toml": "subjects = 40\ngenerations = 250\nmutation_probability = 0.03\nselection = \"tournament\"\nseed = 9\nplot = true\n",
		"run.yaml": "subjects: 40\ngenerations: 250\nmutation_probability: 0.03\nselection: tournament\nseed: 9\nplot: true\n",
		"run.json": `{"subjects": 40, "generations": 250, "mutation_probability": 0.03, "selection": "tournament", "seed": 9, "plot": true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := loadRunConfig(writeConfig(t, name, body))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			req := api.RunRequest{Subjects: 100, Generations: 1000, ChildrenPerPair: 2}
			if !cfg.apply(&req) {
				t.Fatal("expected seed to be reported as set")
			}
			if req.Subjects != 40 || req.Generations != 250 || req.MutationProbability != 0.03 ||
				req.Selection != "tournament" || req.Seed != 9 || !req.Plot {
				t.Fatalf("unexpected request: %+v", req)
			}
			if req.ChildrenPerPair != 2 {
				t.Fatalf("unset key overwrote default: %+v", req)
			}
		})
	}
}

func TestLoadRunConfigRejectsUnknownExtension(t *testing.T) {
	if _, err := loadRunConfig(writeConfig(t, "run.ini", "subjects=40")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestOverrideFromFlags(t *testing.T) {
	req := api.RunRequest{Subjects: 40, Generations: 250, Selection: "tournament"}
	set := map[string]bool{"gens": true, "seed": true}
	values := map[string]any{
		"subjects": 100,
		"gens":     10,
		"seed":     uint64(5),
	}
	if err := overrideFromFlags(&req, set, values); err != nil {
		t.Fatalf("override: %v", err)
	}
	if req.Subjects != 40 || req.Generations != 10 || req.Seed != 5 || req.Selection != "tournament" {
		t.Fatalf("unexpected request: %+v", req)
	}
}
