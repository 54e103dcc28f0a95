package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	api "treasurehunt/pkg/treasurehunt"
)

// runConfigFile is the on-disk run configuration. Unset keys keep the flag
// defaults.
type runConfigFile struct {
	RunID               *string  `json:"run_id" toml:"run_id" yaml:"run_id"`
	Subjects            *int     `json:"subjects" toml:"subjects" yaml:"subjects"`
	Generations         *int     `json:"generations" toml:"generations" yaml:"generations"`
	MutationProbability *float64 `json:"mutation_probability" toml:"mutation_probability" yaml:"mutation_probability"`
	Selection           *string  `json:"selection" toml:"selection" yaml:"selection"`
	Seed                *uint64  `json:"seed" toml:"seed" yaml:"seed"`
	ChildrenPerPair     *int     `json:"children_per_pair" toml:"children_per_pair" yaml:"children_per_pair"`
	ProgressEvery       *int     `json:"progress_every" toml:"progress_every" yaml:"progress_every"`
	Plot                *bool    `json:"plot" toml:"plot" yaml:"plot"`
}

func loadRunConfig(path string) (runConfigFile, error) {
	var cfg runConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q (want .toml, .yaml, .yml or .json)", ext)
	}
	return cfg, nil
}

// seedSet reports whether the file pinned the seed.
func (cfg runConfigFile) apply(req *api.RunRequest) (seedSet bool) {
	if cfg.RunID != nil {
		req.RunID = *cfg.RunID
	}
	if cfg.Subjects != nil {
		req.Subjects = *cfg.Subjects
	}
	if cfg.Generations != nil {
		req.Generations = *cfg.Generations
	}
	if cfg.MutationProbability != nil {
		req.MutationProbability = *cfg.MutationProbability
	}
	if cfg.Selection != nil {
		req.Selection = *cfg.Selection
	}
	if cfg.Seed != nil {
		req.Seed = *cfg.Seed
		seedSet = true
	}
	if cfg.ChildrenPerPair != nil {
		req.ChildrenPerPair = *cfg.ChildrenPerPair
	}
	if cfg.ProgressEvery != nil {
		req.ProgressEvery = *cfg.ProgressEvery
	}
	if cfg.Plot != nil {
		req.Plot = *cfg.Plot
	}
	return seedSet
}

func overrideFromFlags(req *api.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "subjects":
			req.Subjects = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "mutation":
			req.MutationProbability = v.(float64)
		case "selection":
			req.Selection = v.(string)
		case "seed":
			req.Seed = v.(uint64)
		case "children":
			req.ChildrenPerPair = v.(int)
		case "progress-every":
			req.ProgressEvery = v.(int)
		case "plot":
			req.Plot = v.(bool)
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}
