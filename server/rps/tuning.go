package rps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the predictor constants. The defaults were tuned by hand
// and have no game-theoretic derivation.
type Tuning struct {
	InitialExponent  float64 `yaml:"initial_exponent" json:"initial_exponent"`
	MinExponent      float64 `yaml:"min_exponent" json:"min_exponent"`
	MaxExponent      float64 `yaml:"max_exponent" json:"max_exponent"`
	ExponentStep     float64 `yaml:"exponent_step" json:"exponent_step"`
	ResponseExponent float64 `yaml:"response_exponent" json:"response_exponent"`
	TransitionWeight float64 `yaml:"transition_weight" json:"transition_weight"`
	ResponseWeight   float64 `yaml:"response_weight" json:"response_weight"`
	Amplification    float64 `yaml:"amplification" json:"amplification"`
}

func DefaultTuning() Tuning {
	return Tuning{
		InitialExponent:  2.5,
		MinExponent:      1.5,
		MaxExponent:      4.0,
		ExponentStep:     0.1,
		ResponseExponent: 1.5,
		TransitionWeight: 0.8,
		ResponseWeight:   0.2,
		Amplification:    2.0,
	}
}

func (t Tuning) Validate() error {
	if t.MinExponent <= 0 || t.MinExponent > t.MaxExponent {
		return fmt.Errorf("exponent bounds [%g, %g] are invalid", t.MinExponent, t.MaxExponent)
	}
	if t.InitialExponent < t.MinExponent || t.InitialExponent > t.MaxExponent {
		return fmt.Errorf("initial exponent %g outside [%g, %g]", t.InitialExponent, t.MinExponent, t.MaxExponent)
	}
	if t.ExponentStep <= 0 {
		return fmt.Errorf("exponent step must be > 0")
	}
	if t.ResponseExponent <= 0 {
		return fmt.Errorf("response exponent must be > 0")
	}
	if t.TransitionWeight < 0 || t.ResponseWeight < 0 || t.TransitionWeight+t.ResponseWeight == 0 {
		return fmt.Errorf("weights %g/%g are invalid", t.TransitionWeight, t.ResponseWeight)
	}
	if t.Amplification <= 0 {
		return fmt.Errorf("amplification must be > 0")
	}
	return nil
}

// LoadTuning reads a YAML file on top of DefaultTuning, so a file may
// override only some of the keys.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return DefaultTuning(), fmt.Errorf("invalid tuning in %s: %w", path, err)
	}
	return t, nil
}
