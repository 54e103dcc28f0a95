package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"treasurehunt/internal/evo"
	api "treasurehunt/pkg/treasurehunt"
)

const (
	minSubjects    = 20
	minGenerations = 1
)

var errUsage = errors.New("usage")

func usageError(msg string) error {
	return fmt.Errorf("%w: %s", errUsage, msg)
}

type ArgErrorKind int

const (
	InvalidArgument ArgErrorKind = iota
	OutOfRange
)

func (k ArgErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case OutOfRange:
		return "out of range"
	default:
		return fmt.Sprintf("arg error(%d)", int(k))
	}
}

// ArgError reports a run parameter that could not be accepted.
type ArgError struct {
	Kind   ArgErrorKind
	Arg    string
	Value  string
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %s", e.Kind, e.Arg, e.Value, e.Reason)
}

// parsePositional reads the legacy form
// <subjects> <generations> <mutation probability> <selection>.
func parsePositional(args []string, req *api.RunRequest) error {
	if len(args) != 4 {
		return usageError("expected <subjects> <generations> <mutation probability> <selection method>; selection methods: 0 - roulette, 1 - tournament")
	}

	subjects, err := parseCount("subjects", args[0])
	if err != nil {
		return err
	}
	generations, err := parseCount("generations", args[1])
	if err != nil {
		return err
	}
	mutation, err := parseProbability("mutation", args[2])
	if err != nil {
		return err
	}
	selection, err := parseSelection("selection", args[3])
	if err != nil {
		return err
	}

	req.Subjects = subjects
	req.Generations = generations
	req.MutationProbability = mutation
	req.Selection = selection
	return nil
}

func parseCount(arg, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &ArgError{Kind: InvalidArgument, Arg: arg, Value: value, Reason: "not an integer"}
	}
	return n, nil
}

func parseProbability(arg, value string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &ArgError{Kind: InvalidArgument, Arg: arg, Value: value, Reason: "not a number"}
	}
	if err := checkProbability(arg, p); err != nil {
		return 0, err
	}
	return p, nil
}

// parseSelection accepts a selection code or name and returns the name.
func parseSelection(arg, value string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	if code, err := strconv.Atoi(name); err == nil {
		selector, err := evo.SelectorFromCode(code)
		if err != nil {
			return "", &ArgError{Kind: OutOfRange, Arg: arg, Value: value, Reason: "selection method must be 0 (roulette) or 1 (tournament)"}
		}
		return selector.Name(), nil
	}
	selector, err := evo.SelectorFromName(name)
	if err != nil {
		return "", &ArgError{Kind: InvalidArgument, Arg: arg, Value: value, Reason: "unknown selection method"}
	}
	return selector.Name(), nil
}

func checkProbability(arg string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return &ArgError{Kind: OutOfRange, Arg: arg, Value: strconv.FormatFloat(p, 'g', -1, 64), Reason: "must be within [0, 1]"}
	}
	return nil
}

func validateRunRequest(req api.RunRequest) error {
	if req.Subjects < minSubjects {
		return &ArgError{Kind: OutOfRange, Arg: "subjects", Value: strconv.Itoa(req.Subjects), Reason: fmt.Sprintf("minimum number of subjects is %d", minSubjects)}
	}
	if req.Generations < minGenerations {
		return &ArgError{Kind: OutOfRange, Arg: "generations", Value: strconv.Itoa(req.Generations), Reason: fmt.Sprintf("minimum number of generations is %d", minGenerations)}
	}
	if err := checkProbability("mutation", req.MutationProbability); err != nil {
		return err
	}
	if _, err := parseSelection("selection", req.Selection); err != nil {
		return err
	}
	if req.ChildrenPerPair < 0 {
		return &ArgError{Kind: OutOfRange, Arg: "children", Value: strconv.Itoa(req.ChildrenPerPair), Reason: "must be >= 0"}
	}
	if req.ProgressEvery < 0 {
		return &ArgError{Kind: OutOfRange, Arg: "progress-every", Value: strconv.Itoa(req.ProgressEvery), Reason: "must be >= 0"}
	}
	return nil
}
