package prior

import (
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// Set is an ordered collection of named priors, one per model parameter.
// Order is preserved from construction (or from the prior file) so that
// unit-cube vectors and sample matrices have a stable column layout.
type Set struct {
	names  []string
	priors map[string]Prior
}

// NewSet returns an empty prior set.
func NewSet() *Set {
	return &Set{priors: map[string]Prior{}}
}

// Add registers a prior under the given parameter name, replacing any
// existing prior while keeping the original position.
func (s *Set) Add(name string, p Prior) {
	if _, ok := s.priors[name]; !ok {
		s.names = append(s.names, name)
	}
	s.priors[name] = p
}

// Get returns the prior for a parameter name.
func (s *Set) Get(name string) (Prior, bool) {
	p, ok := s.priors[name]
	return p, ok
}

// Names returns the parameter names in set order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.names) }

// Sample draws one value per parameter.
func (s *Set) Sample(rng *rand.Rand) map[string]float64 {
	out := make(map[string]float64, len(s.names))
	for _, n := range s.names {
		out[n] = s.priors[n].Sample(rng)
	}
	return out
}

// SampleVector draws one value per parameter, in set order.
func (s *Set) SampleVector(rng *rand.Rand) []float64 {
	out := make([]float64, len(s.names))
	for i, n := range s.names {
		out[i] = s.priors[n].Sample(rng)
	}
	return out
}

// LnProb returns the joint log prior density of a parameter map, -Inf if
// any parameter lies outside its support or is missing.
func (s *Set) LnProb(params map[string]float64) float64 {
	total := 0.0
	for _, n := range s.names {
		x, ok := params[n]
		if !ok {
			return math.Inf(-1)
		}
		lp := s.priors[n].LnProb(x)
		if math.IsInf(lp, -1) {
			return lp
		}
		total += lp
	}
	return total
}

// LnProbVector is LnProb over a vector in set order.
func (s *Set) LnProbVector(x []float64) float64 {
	if len(x) != len(s.names) {
		return math.Inf(-1)
	}
	total := 0.0
	for i, n := range s.names {
		lp := s.priors[n].LnProb(x[i])
		if math.IsInf(lp, -1) {
			return lp
		}
		total += lp
	}
	return total
}

// Rescale maps a unit-cube vector into parameter space, in set order.
func (s *Set) Rescale(u []float64) ([]float64, error) {
	if len(u) != len(s.names) {
		return nil, fmt.Errorf("rescale needs %d unit-cube coordinates, got %d", len(s.names), len(u))
	}
	out := make([]float64, len(u))
	for i, n := range s.names {
		out[i] = s.priors[n].Rescale(u[i])
	}
	return out, nil
}

// ToParams turns a vector in set order into a parameter map.
func (s *Set) ToParams(x []float64) map[string]float64 {
	out := make(map[string]float64, len(s.names))
	for i, n := range s.names {
		out[n] = x[i]
	}
	return out
}

// priorSpec is the on-disk YAML form of one prior.
type priorSpec struct {
	Type    string  `yaml:"type"`
	Minimum float64 `yaml:"minimum,omitempty"`
	Maximum float64 `yaml:"maximum,omitempty"`
	Mu      float64 `yaml:"mu,omitempty"`
	Sigma   float64 `yaml:"sigma,omitempty"`
	Peak    float64 `yaml:"peak,omitempty"`
}

func (ps priorSpec) build(name string) (Prior, error) {
	var (
		p   Prior
		err error
	)
	switch ps.Type {
	case "uniform":
		p, err = NewUniform(ps.Minimum, ps.Maximum)
	case "log_uniform":
		p, err = NewLogUniform(ps.Minimum, ps.Maximum)
	case "gaussian", "normal":
		p, err = NewGaussian(ps.Mu, ps.Sigma)
	case "truncated_gaussian":
		p, err = NewTruncatedGaussian(ps.Mu, ps.Sigma, ps.Minimum, ps.Maximum)
	case "sine":
		p = Sine{}
	case "cosine":
		p = Cosine{}
	case "delta":
		p = DeltaFunction{Peak: ps.Peak}
	default:
		return nil, fmt.Errorf("unknown prior type %q", ps.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("prior %q: %w", name, err)
	}
	return p, nil
}

func specFor(p Prior) priorSpec {
	switch v := p.(type) {
	case Uniform:
		return priorSpec{Type: v.Kind(), Minimum: v.Min, Maximum: v.Max}
	case LogUniform:
		return priorSpec{Type: v.Kind(), Minimum: v.Min, Maximum: v.Max}
	case Gaussian:
		return priorSpec{Type: v.Kind(), Mu: v.Mu, Sigma: v.Sigma}
	case TruncatedGaussian:
		return priorSpec{Type: v.Kind(), Mu: v.Mu, Sigma: v.Sigma, Minimum: v.Min, Maximum: v.Max}
	case DeltaFunction:
		return priorSpec{Type: v.Kind(), Peak: v.Peak}
	default:
		return priorSpec{Type: p.Kind()}
	}
}

// UnmarshalYAML decodes a prior file mapping of parameter name to prior
// spec, preserving the file's key order.
func (s *Set) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("prior file must be a mapping of parameter name to prior")
	}
	s.names = nil
	s.priors = map[string]Prior{}
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var ps priorSpec
		if err := node.Content[i+1].Decode(&ps); err != nil {
			return fmt.Errorf("prior %q: %w", name, err)
		}
		p, err := ps.build(name)
		if err != nil {
			return err
		}
		s.Add(name, p)
	}
	return nil
}

// MarshalYAML encodes the set back into the prior-file form, in set order.
func (s *Set) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range s.names {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		val := &yaml.Node{}
		if err := val.Encode(specFor(s.priors[name])); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, key, val)
	}
	return root, nil
}

// Parse decodes a YAML prior file.
func Parse(data []byte) (*Set, error) {
	s := NewSet()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("prior file defines no parameters")
	}
	return s, nil
}

// Load reads and decodes a YAML prior file from disk.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prior file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse prior file %s: %w", path, err)
	}
	return s, nil
}

// Write encodes the set as YAML.
func (s *Set) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
