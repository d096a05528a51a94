package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is one entry of a replay trace. Each field is optional: a step may
// update the state of charge, record a driving segment, or both. The estimate
// is reported after every step.
type Step struct {
	SoC        *float64 `yaml:"soc,omitempty" json:"soc,omitempty"`
	DistanceKm *float64 `yaml:"distance_km,omitempty" json:"distance_km,omitempty"`
	EnergyKWh  *float64 `yaml:"energy_kwh,omitempty" json:"energy_kwh,omitempty"`
}

// HasSegment reports whether the step records driving data.
func (s Step) HasSegment() bool { return s.DistanceKm != nil }

// Trace is a recorded sequence of estimator inputs.
type Trace struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// ErrEmptyTrace is returned when a trace holds no steps.
var ErrEmptyTrace = errors.New("trace has no steps")

// LoadTrace reads a trace from a YAML or JSON file.
func LoadTrace(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeTrace(f)
}

// DecodeTrace parses a trace document. JSON is accepted since it is a subset
// of YAML. Either a mapping with a steps list or a bare list of steps is
// accepted.
func DecodeTrace(r io.Reader) (Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Trace{}, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Trace{}, fmt.Errorf("parse trace: %w", err)
	}
	var t Trace
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		err = node.Content[0].Decode(&t.Steps)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&t)
	}
	if err != nil {
		return Trace{}, fmt.Errorf("parse trace: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Trace{}, err
	}
	return t, nil
}

// Validate checks the structure of the trace. Values themselves are checked
// by the estimator during replay.
func (t Trace) Validate() error {
	if len(t.Steps) == 0 {
		return ErrEmptyTrace
	}
	for i, s := range t.Steps {
		if s.EnergyKWh != nil && s.DistanceKm == nil {
			return fmt.Errorf("step %d: energy_kwh without distance_km", i)
		}
		if s.SoC == nil && s.DistanceKm == nil {
			return fmt.Errorf("step %d: nothing to apply", i)
		}
	}
	return nil
}
