// Package glossmatch implements the Gloss Matcher: given a template's own
// gloss text and a set of candidate homonym definitions, it scores each
// candidate with a pre-fit standardizer + logistic model and returns the
// best match. The model is always loaded pre-fit -- no Fit or Train
// function exists anywhere in this package.
package glossmatch

import (
	"encoding/json"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Model is a pre-fit standardizer (Mean/Scale) plus logistic scorer
// (Weights/Intercept) over the Featurize feature vector.
type Model struct {
	Mean         []float64
	Scale        []float64
	Weights      []float64
	Intercept    float64
	FuzzyTversky bool
}

type modelFile struct {
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
	FuzzyTversky bool      `json:"fuzzy_tversky"`
}

// LoadModel reads a pre-fit model from a JSON file shaped like modelFile.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw modelFile
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, err
	}
	return &Model{
		Mean:         raw.Mean,
		Scale:        raw.Scale,
		Weights:      raw.Weights,
		Intercept:    raw.Intercept,
		FuzzyTversky: raw.FuzzyTversky,
	}, nil
}

// score scales feats by the standardizer and returns the logistic
// probability against Weights/Intercept.
func (m *Model) score(feats []float64) float64 {
	scaled := make([]float64, len(feats))
	for i, v := range feats {
		mean, scale := 0.0, 1.0
		if i < len(m.Mean) {
			mean = m.Mean[i]
		}
		if i < len(m.Scale) && m.Scale[i] != 0 {
			scale = m.Scale[i]
		}
		scaled[i] = (v - mean) / scale
	}

	weights := m.Weights
	if len(weights) > len(scaled) {
		weights = weights[:len(scaled)]
	} else if len(weights) < len(scaled) {
		scaled = scaled[:len(weights)]
	}
	x := mat.NewVecDense(len(scaled), scaled)
	w := mat.NewVecDense(len(weights), weights)
	dot := mat.Dot(x, w)
	return 1 / (1 + math.Exp(-(dot + m.Intercept)))
}

// Matcher implements resolver.GlossMatcher over a pre-fit Model.
type Matcher struct {
	model *Model
}

// New builds a Matcher from a loaded Model.
func New(model *Model) *Matcher {
	return &Matcher{model: model}
}

// Best scores every definition against templateGloss and returns the
// index of the highest-probability match. Returns ok=false if there is no
// model or no candidate to score.
func (m *Matcher) Best(templateGloss string, definitions []string) (int, bool) {
	if m.model == nil || len(definitions) == 0 {
		return 0, false
	}

	best := -1
	bestScore := math.Inf(-1)
	for i, def := range definitions {
		feats := Featurize(templateGloss, def, m.model.FuzzyTversky)
		score := m.model.score(feats)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
