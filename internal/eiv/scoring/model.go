// Package scoring loads frozen model artifacts and scores assembled feature
// vectors under each client-type scenario.
package scoring

import (
	"fmt"
	"math"
)

// Document is the on-disk form of one frozen artifact.
type Document struct {
	Kind     string   `json:"kind"`
	Version  string   `json:"version"`
	Features []string `json:"features"`

	// scaler
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale,omitempty"`

	// regressor
	Model *Booster `json:"model,omitempty"`

	// classifier
	Classes     []string  `json:"classes,omitempty"`
	ClassModels []Booster `json:"class_models,omitempty"`
}

// Booster is either a linear model or an additive tree ensemble; both
// contribute to the margin when present.
type Booster struct {
	Linear    *Linear `json:"linear,omitempty"`
	Trees     []Tree  `json:"trees,omitempty"`
	BaseScore float64 `json:"base_score"`
}

type Linear struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Tree is a flat binary tree; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split when Leaf is nil: x[Feature] < Threshold goes Left.
// NaN inputs follow DefaultLeft.
type Node struct {
	Feature     int      `json:"feature"`
	Threshold   float64  `json:"threshold"`
	Left        int      `json:"left"`
	Right       int      `json:"right"`
	DefaultLeft bool     `json:"default_left"`
	Leaf        *float64 `json:"leaf,omitempty"`
}

// Margin evaluates the booster on x.
func (b *Booster) Margin(x []float64) float64 {
	m := b.BaseScore
	if b.Linear != nil {
		m += b.Linear.Intercept
		for i, c := range b.Linear.Coefficients {
			m += c * x[i]
		}
	}
	for i := range b.Trees {
		m += b.Trees[i].eval(x)
	}
	return m
}

func (t *Tree) eval(x []float64) float64 {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Leaf != nil {
			return *n.Leaf
		}
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			idx = pick(n.DefaultLeft, n.Left, n.Right)
		case v < n.Threshold:
			idx = n.Left
		default:
			idx = n.Right
		}
	}
	return 0
}

func pick(left bool, l, r int) int {
	if left {
		return l
	}
	return r
}

// check verifies a booster fits an input of width features.
func (b *Booster) check(width int) error {
	if b.Linear != nil && len(b.Linear.Coefficients) != width {
		return fmt.Errorf("linear model has %d coefficients for %d features", len(b.Linear.Coefficients), width)
	}
	for ti, t := range b.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf != nil {
				continue
			}
			if n.Feature < 0 || n.Feature >= width {
				return fmt.Errorf("tree %d node %d splits on feature %d of %d", ti, ni, n.Feature, width)
			}
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has invalid children", ti, ni)
			}
		}
	}
	return nil
}

// Scaler standardizes named features with frozen parameters.
type Scaler struct {
	Version  string
	Features []string
	mean     []float64
	scale    []float64
}

// Transform standardizes x, ordered as Features. Zero scales act as 1.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Features) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Features), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.mean[i]) / scale
	}
	return out, nil
}

// Regressor predicts the EIV percentage.
type Regressor struct {
	Version  string
	Features []string
	model    Booster
}

func (r *Regressor) Predict(x []float64) float64 {
	return r.model.Margin(x)
}

// Classifier predicts class probabilities with a softmax over per-class
// margins. A single class model is treated as binary (sigmoid).
type Classifier struct {
	Version  string
	Features []string
	Classes  []string
	models   []Booster
}

func (c *Classifier) PredictProba(x []float64) []float64 {
	if len(c.models) == 1 {
		p := 1 / (1 + math.Exp(-c.models[0].Margin(x)))
		return []float64{1 - p, p}
	}

	margins := make([]float64, len(c.models))
	maxM := math.Inf(-1)
	for i := range c.models {
		margins[i] = c.models[i].Margin(x)
		maxM = math.Max(maxM, margins[i])
	}
	var sum float64
	for i, m := range margins {
		margins[i] = math.Exp(m - maxM)
		sum += margins[i]
	}
	for i := range margins {
		margins[i] /= sum
	}
	return margins
}

func newScaler(doc *Document) (*Scaler, error) {
	if doc.Kind != "standard_scaler" {
		return nil, fmt.Errorf("expected kind standard_scaler, got %q", doc.Kind)
	}
	if len(doc.Mean) != len(doc.Features) || len(doc.Scale) != len(doc.Features) {
		return nil, fmt.Errorf("scaler mean/scale length does not match %d features", len(doc.Features))
	}
	return &Scaler{Version: doc.Version, Features: doc.Features, mean: doc.Mean, scale: doc.Scale}, nil
}

func newRegressor(doc *Document) (*Regressor, error) {
	if doc.Kind != "regressor" {
		return nil, fmt.Errorf("expected kind regressor, got %q", doc.Kind)
	}
	if doc.Model == nil {
		return nil, fmt.Errorf("regressor has no model")
	}
	if err := doc.Model.check(len(doc.Features)); err != nil {
		return nil, err
	}
	return &Regressor{Version: doc.Version, Features: doc.Features, model: *doc.Model}, nil
}

func newClassifier(doc *Document) (*Classifier, error) {
	if doc.Kind != "classifier" {
		return nil, fmt.Errorf("expected kind classifier, got %q", doc.Kind)
	}
	switch {
	case len(doc.ClassModels) == 0:
		return nil, fmt.Errorf("classifier has no class models")
	case len(doc.ClassModels) == 1 && len(doc.Classes) != 2:
		return nil, fmt.Errorf("binary classifier needs 2 classes, got %d", len(doc.Classes))
	case len(doc.ClassModels) > 1 && len(doc.Classes) != len(doc.ClassModels):
		return nil, fmt.Errorf("classifier has %d classes for %d class models", len(doc.Classes), len(doc.ClassModels))
	}
	for i := range doc.ClassModels {
		if err := doc.ClassModels[i].check(len(doc.Features)); err != nil {
			return nil, fmt.Errorf("class model %d: %w", i, err)
		}
	}
	return &Classifier{Version: doc.Version, Features: doc.Features, Classes: doc.Classes, models: doc.ClassModels}, nil
}
