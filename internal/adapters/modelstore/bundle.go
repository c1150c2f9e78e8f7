// Package modelstore loads the trained ensemble and team encoder from a
// JSON model bundle kept on disk or in object storage.
package modelstore

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/okian/skillmatch/internal/domain/encoder"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/scoring"
)

// Predictor kinds understood by the bundle decoder.
const (
	KindLinear  = "linear"
	KindForest  = "forest"
	KindBoosted = "boosted"
)

// maxBundleBytes caps how much of a source is read.
const maxBundleBytes = 256 << 20

// Bundle is a decoded model artifact.
type Bundle struct {
	Version  string
	Ensemble *scoring.Ensemble
	Encoder  *encoder.Encoder
}

type bundleDocument struct {
	Version     string              `json:"version"`
	TeamClasses []string            `json:"team_classes"`
	Predictors  []predictorDocument `json:"predictors"`
}

type predictorDocument struct {
	Name         string         `json:"name"`
	Kind         string         `json:"kind"`
	Intercept    float64        `json:"intercept"`
	Coefficients []float64      `json:"coefficients"`
	BaseScore    float64        `json:"base_score"`
	StrictLess   bool           `json:"strict_less"`
	Trees        []scoring.Tree `json:"trees"`
}

// Source yields the raw bundle bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Load reads and decodes a bundle from src.
func Load(ctx context.Context, src Source) (*Bundle, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open model bundle %s: %w", ranking.ErrConfiguration, src, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBundleBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read model bundle %s: %w", ranking.ErrConfiguration, src, err)
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return b, nil
}

// Decode builds the ensemble and encoder from bundle JSON. Any invalid
// predictor or an empty class list is a configuration error.
func Decode(data []byte) (*Bundle, error) {
	var doc bundleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode model bundle: %w", ranking.ErrConfiguration, err)
	}

	enc, err := encoder.New(doc.TeamClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrConfiguration, err)
	}

	predictors := make([]scoring.Predictor, 0, len(doc.Predictors))
	for i, pd := range doc.Predictors {
		p, err := pd.build(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ranking.ErrConfiguration, err)
		}
		predictors = append(predictors, p)
	}

	ens, err := scoring.NewEnsemble(predictors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrConfiguration, err)
	}

	return &Bundle{Version: doc.Version, Ensemble: ens, Encoder: enc}, nil
}

func (pd *predictorDocument) build(i int) (scoring.Predictor, error) {
	name := pd.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", pd.Kind, i)
	}
	if pd.StrictLess {
		for t := range pd.Trees {
			pd.Trees[t].StrictLess = true
		}
	}

	switch pd.Kind {
	case KindLinear:
		return scoring.NewLinear(name, pd.Intercept, pd.Coefficients)
	case KindForest:
		return scoring.NewForest(name, pd.Trees)
	case KindBoosted:
		return scoring.NewBoosted(name, pd.BaseScore, pd.Trees)
	default:
		return nil, fmt.Errorf("predictor %d: %w: %q", i, ErrUnknownKind, pd.Kind)
	}
}
