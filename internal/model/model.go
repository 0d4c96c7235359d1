// Package model loads an exported regression pipeline and evaluates it on
// single feature rows. A loaded Model is immutable and safe for concurrent use.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrShape is returned when a row does not have one value per model column.
	ErrShape = errors.New("feature row shape mismatch")
	// ErrNonFinite is returned when the model output is NaN or infinite.
	ErrNonFinite = errors.New("model produced a non-finite prediction")
)

type regressor interface {
	predict(row []float64) float64
}

// Model is a loaded artifact ready for inference.
type Model struct {
	name      string
	version   string
	kind      Kind
	columns   []string
	regressor regressor
	output    func(float64) float64
}

// Load reads and validates the artifact at path. columns is the positional
// column order callers will use; an artifact declaring any other order is rejected.
func Load(path string, columns []string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	m, err := Parse(data, columns)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes an artifact from its JSON form.
func Parse(data []byte, columns []string) (*Model, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.validate(columns); err != nil {
		return nil, err
	}
	return build(a), nil
}

func build(a Artifact) *Model {
	m := &Model{
		name:    a.Name,
		version: a.Version,
		kind:    a.Kind,
		columns: append([]string(nil), a.Features...),
		output:  func(y float64) float64 { return y },
	}
	if a.Output == outputExpm1 {
		m.output = math.Expm1
	}

	switch a.Kind {
	case KindGBDT:
		trees := make([]Tree, len(a.Trees))
		for i, t := range a.Trees {
			trees[i] = Tree{Nodes: append([]Node(nil), t.Nodes...)}
		}
		m.regressor = &ensemble{baseline: a.Baseline, trees: trees}
	case KindLinear:
		m.regressor = &linear{
			intercept:    a.Intercept,
			coefficients: append([]float64(nil), a.Coefficients...),
		}
	}
	return m
}

// Name returns the artifact name.
func (m *Model) Name() string { return m.name }

// Version returns the artifact version string.
func (m *Model) Version() string { return m.version }

// Kind returns the regressor family.
func (m *Model) Kind() Kind { return m.kind }

// Columns returns a copy of the expected column order.
func (m *Model) Columns() []string { return append([]string(nil), m.columns...) }

// Predict evaluates the model on one row in column order.
func (m *Model) Predict(ctx context.Context, row []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(row) != len(m.columns) {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrShape, len(row), len(m.columns))
	}
	y := m.output(m.regressor.predict(row))
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrNonFinite
	}
	return y, nil
}

type ensemble struct {
	baseline float64
	trees    []Tree
}

func (e *ensemble) predict(row []float64) float64 {
	y := e.baseline
	for i := range e.trees {
		y += e.trees[i].eval(row)
	}
	return y
}

// eval walks from the root; validation guarantees children follow their parent.
func (t *Tree) eval(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		v := row[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.MissingLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case v <= n.Threshold:
			i = n.Left
		default:
			i = n.Right
		}
	}
}

type linear struct {
	intercept    float64
	coefficients []float64
}

func (l *linear) predict(row []float64) float64 {
	return l.intercept + floats.Dot(l.coefficients, row)
}
