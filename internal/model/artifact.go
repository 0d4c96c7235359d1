package model

import (
	"errors"
	"fmt"
)

// Kind selects the regressor family stored in an artifact.
type Kind string

const (
	KindGBDT   Kind = "gbdt"
	KindLinear Kind = "linear"
)

const (
	outputIdentity = "identity"
	outputExpm1    = "expm1"
)

// Artifact is the on-disk JSON form of an exported regression pipeline.
type Artifact struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Kind     Kind     `json:"kind"`
	Features []string `json:"features"`
	// Output is the inverse target transform: "identity" (default) or "expm1".
	Output string `json:"output,omitempty"`

	// gbdt
	Baseline float64 `json:"baseline,omitempty"`
	Trees    []Tree  `json:"trees,omitempty"`

	// linear
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
}

// Tree is a single regression tree stored as a flat node array; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is either a split (Leaf == false) or a leaf carrying Value.
type Node struct {
	Leaf        bool    `json:"leaf,omitempty"`
	Value       float64 `json:"value,omitempty"`
	Feature     int     `json:"feature,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
	Left        int     `json:"left,omitempty"`
	Right       int     `json:"right,omitempty"`
	MissingLeft bool    `json:"missing_left,omitempty"`
}

var errInvalidArtifact = errors.New("invalid model artifact")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidArtifact, fmt.Sprintf(format, args...))
}

// validate checks the artifact against the expected column order and its own structure.
func (a *Artifact) validate(columns []string) error {
	if len(a.Features) != len(columns) {
		return invalidf("artifact has %d features, want %d", len(a.Features), len(columns))
	}
	for i, name := range columns {
		if a.Features[i] != name {
			return invalidf("feature %d is %q, want %q", i, a.Features[i], name)
		}
	}

	switch a.Output {
	case "", outputIdentity, outputExpm1:
	default:
		return invalidf("unknown output transform %q", a.Output)
	}

	switch a.Kind {
	case KindGBDT:
		return a.validateTrees()
	case KindLinear:
		if len(a.Coefficients) != len(columns) {
			return invalidf("linear model has %d coefficients, want %d", len(a.Coefficients), len(columns))
		}
		return nil
	default:
		return invalidf("unknown model kind %q", a.Kind)
	}
}

func (a *Artifact) validateTrees() error {
	if len(a.Trees) == 0 {
		return invalidf("gbdt model has no trees")
	}
	for ti, t := range a.Trees {
		if len(t.Nodes) == 0 {
			return invalidf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(a.Features) {
				return invalidf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			// children strictly after the parent keeps traversal acyclic
			for _, child := range []int{n.Left, n.Right} {
				if child <= ni || child >= len(t.Nodes) {
					return invalidf("tree %d node %d: child index %d out of range", ti, ni, child)
				}
			}
		}
	}
	return nil
}
