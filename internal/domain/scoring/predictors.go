package scoring

import (
	"fmt"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Linear is an ordinary least squares model: intercept + coefficients . x.
type Linear struct {
	name         string
	intercept    float64
	coefficients [model.FeatureWidth]float64
}

// NewLinear builds a linear predictor. One coefficient per feature is required.
func NewLinear(name string, intercept float64, coefficients []float64) (*Linear, error) {
	if len(coefficients) != model.FeatureWidth {
		return nil, fmt.Errorf("linear %s: want %d coefficients, got %d: %w",
			name, model.FeatureWidth, len(coefficients), ErrInvalidModel)
	}
	l := &Linear{name: name, intercept: intercept}
	copy(l.coefficients[:], coefficients)
	return l, nil
}

// Name implements Predictor.
func (l *Linear) Name() string { return l.name }

// Predict implements Predictor.
func (l *Linear) Predict(v model.FeatureVector) (float64, error) {
	x := v.Values()
	out := l.intercept
	for i, c := range l.coefficients {
		out += c * x[i]
	}
	return out, nil
}

// Node is one node of a regression tree. A node without children is a leaf
// and yields Value. Children always sit after their parent in the slice.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n Node) leaf() bool { return n.Left <= 0 && n.Right <= 0 }

// Tree is a binary regression tree. A sample goes left when its feature is
// <= Threshold, or < Threshold when StrictLess is set.
type Tree struct {
	Nodes      []Node `json:"nodes"`
	StrictLess bool   `json:"strict_less"`
}

// Validate checks node references so that evaluation always terminates.
func (t Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes: %w", ErrInvalidModel)
	}
	for i, n := range t.Nodes {
		if n.leaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= model.FeatureWidth {
			return fmt.Errorf("node %d: feature %d out of range: %w", i, n.Feature, ErrInvalidModel)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: children (%d, %d) out of range: %w", i, n.Left, n.Right, ErrInvalidModel)
		}
	}
	return nil
}

// eval walks the tree. The tree must have been validated.
func (t Tree) eval(x *[model.FeatureWidth]float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.leaf() {
			return n.Value
		}
		v := x[n.Feature]
		goLeft := v <= n.Threshold
		if t.StrictLess {
			goLeft = v < n.Threshold
		}
		if goLeft {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func validateTrees(kind, name string, trees []Tree) error {
	if len(trees) == 0 {
		return fmt.Errorf("%s %s: no trees: %w", kind, name, ErrInvalidModel)
	}
	for i, t := range trees {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s %s: tree %d: %w", kind, name, i, err)
		}
	}
	return nil
}

// Forest averages its trees (bagged regression forest).
type Forest struct {
	name  string
	trees []Tree
}

// NewForest builds a forest predictor from validated trees.
func NewForest(name string, trees []Tree) (*Forest, error) {
	if err := validateTrees("forest", name, trees); err != nil {
		return nil, err
	}
	return &Forest{name: name, trees: trees}, nil
}

// Name implements Predictor.
func (f *Forest) Name() string { return f.name }

// Predict implements Predictor.
func (f *Forest) Predict(v model.FeatureVector) (float64, error) {
	x := v.Values()
	var sum float64
	for _, t := range f.trees {
		sum += t.eval(&x)
	}
	return sum / float64(len(f.trees)), nil
}

// Boosted sums its trees on top of a base score (gradient boosting).
type Boosted struct {
	name      string
	baseScore float64
	trees     []Tree
}

// NewBoosted builds a boosted-trees predictor.
func NewBoosted(name string, baseScore float64, trees []Tree) (*Boosted, error) {
	if err := validateTrees("boosted", name, trees); err != nil {
		return nil, err
	}
	return &Boosted{name: name, baseScore: baseScore, trees: trees}, nil
}

// Name implements Predictor.
func (b *Boosted) Name() string { return b.name }

// Predict implements Predictor.
func (b *Boosted) Predict(v model.FeatureVector) (float64, error) {
	x := v.Values()
	out := b.baseScore
	for _, t := range b.trees {
		out += t.eval(&x)
	}
	return out, nil
}

// Ensure all predictor families implement the interface.
var (
	_ Predictor = (*Linear)(nil)
	_ Predictor = (*Forest)(nil)
	_ Predictor = (*Boosted)(nil)
)
