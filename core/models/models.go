// Package models is the library of transient light-curve models.
//
// Every model maps a time grid (days since explosion) plus a parameter map
// to an output array in a requested physical unit. Models are registered by
// name; the registry drives the CLI, the fitting engine and the MCP tools.
package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/pulsegrid/afterglow/schema"
)

// Param describes one parameter of a model.
type Param struct {
	Name        string  // Parameter name used in priors and parameter maps
	Unit        string  // Human-readable unit
	Description string  // One-line description
	Default     float64 // Reasonable default used by evaluate/simulate
}

// Params maps parameter names to values for one evaluation.
type Params map[string]float64

// Request carries the evaluation context that is not a model parameter.
type Request struct {
	Unit        schema.OutputUnit
	Frequencies []float64 // Per-point observer-frame frequencies in Hz; length 1 broadcasts
	Redshift    float64   // Needed for flux, flux density and magnitude outputs
}

// EvaluateFunc computes the model output on the given time grid.
// Implementations must return an array of the same length as t and never
// return NaN for in-domain parameters; out-of-domain inputs are an error.
type EvaluateFunc func(t []float64, p Params, req Request) ([]float64, error)

// Model describes one light-curve model in the registry.
type Model struct {
	Name        string
	Description string
	Type        schema.TransientType
	Params      []Param            // Declared parameters, in canonical order
	Units       []schema.OutputUnit // Output units the model supports
	Evaluate    EvaluateFunc
}

// SupportsUnit reports whether the model can produce the given unit.
func (m *Model) SupportsUnit(u schema.OutputUnit) bool {
	for _, unit := range m.Units {
		if unit == u {
			return true
		}
	}
	return false
}

// ParamNames returns the declared parameter names in canonical order.
func (m *Model) ParamNames() []string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return names
}

// DefaultParams returns the declared defaults as a parameter map.
func (m *Model) DefaultParams() Params {
	p := make(Params, len(m.Params))
	for _, param := range m.Params {
		p[param.Name] = param.Default
	}
	return p
}

// checkParams validates that every declared parameter is present.
func (m *Model) checkParams(p Params) error {
	for _, param := range m.Params {
		v, ok := p[param.Name]
		if !ok {
			return fmt.Errorf("model %s: missing parameter %q", m.Name, param.Name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("model %s: parameter %q is not finite", m.Name, param.Name)
		}
	}
	return nil
}

var registry = map[string]*Model{}

// register adds a model to the registry and wraps its evaluate function
// with parameter validation. Called from init functions of model files.
func register(m *Model) {
	if _, dup := registry[m.Name]; dup {
		panic(fmt.Sprintf("duplicate model registration: %s", m.Name))
	}
	eval := m.Evaluate
	m.Evaluate = func(t []float64, p Params, req Request) ([]float64, error) {
		if err := m.checkParams(p); err != nil {
			return nil, err
		}
		if !m.SupportsUnit(req.Unit) {
			return nil, fmt.Errorf("model %s does not support %s output", m.Name, req.Unit)
		}
		return eval(t, p, req)
	}
	registry[m.Name] = m
}

// Get returns the named model or an error listing the alternatives.
func Get(name string) (*Model, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q, run 'afterglow models' to list available models", name)
	}
	return m, nil
}

// Names returns all registered model names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns all registered models sorted by name.
func All() []*Model {
	names := Names()
	out := make([]*Model, len(names))
	for i, n := range names {
		out[i] = registry[n]
	}
	return out
}

// frequencyAt resolves the request frequency for point i, broadcasting a
// single-element slice across the grid.
func frequencyAt(req Request, i, n int) (float64, error) {
	switch len(req.Frequencies) {
	case 0:
		return 0, fmt.Errorf("%s output requires a band or frequency", req.Unit)
	case 1:
		return req.Frequencies[0], nil
	case n:
		return req.Frequencies[i], nil
	default:
		return 0, fmt.Errorf("got %d frequencies for %d time samples", len(req.Frequencies), n)
	}
}

// luminosityToRequested converts a bolometric luminosity curve (erg/s) to
// the requested unit. Only luminosity and integrated flux are possible
// without a photosphere model.
func luminosityToRequested(lum []float64, req Request, modelName string) ([]float64, error) {
	switch req.Unit {
	case schema.LuminosityUnit:
		return lum, nil
	case schema.FluxUnit:
		dl, err := LuminosityDistance(req.Redshift)
		if err != nil {
			return nil, err
		}
		area := 4 * math.Pi * dl * dl
		out := make([]float64, len(lum))
		for i, l := range lum {
			out[i] = l / area
		}
		return out, nil
	default:
		return nil, fmt.Errorf("model %s is bolometric and cannot produce %s output", modelName, req.Unit)
	}
}
