package xema

import (
	"errors"
	"fmt"
)

// ErrUnknownVariable is returned when no combination semantics are
// registered for a requested variable code. There is no implicit fallback.
var ErrUnknownVariable = errors.New("no combination semantics registered for variable")

// Semantics selects how daily values of a variable combine into a bucket.
type Semantics int

const (
	// SemanticsAdditive sums the non-nil values (accumulations, e.g.
	// precipitation in mm).
	SemanticsAdditive Semantics = iota
	// SemanticsMean takes the arithmetic mean of the non-nil values
	// (scalar averages, e.g. wind speed).
	SemanticsMean
	// SemanticsCircularMean averages angles in degrees through unit
	// vectors, so that e.g. 350 and 10 combine to 0 rather than 180.
	SemanticsCircularMean
)

func (s Semantics) String() string {
	switch s {
	case SemanticsAdditive:
		return "additive"
	case SemanticsMean:
		return "mean"
	case SemanticsCircularMean:
		return "circular-mean"
	default:
		return "invalid"
	}
}

// Well-known XEMA variable codes.
const (
	VariablePrecipitation = "35"    // daily precipitation accumulation, mm
	VariableWindSpeed     = "VV10m" // wind speed at 10 m, m/s
	VariableWindDirection = "DV10m" // wind direction at 10 m, degrees
)

// Registry maps variable codes to their combination semantics. The lookup
// is explicit per code: unregistered codes fail rather than defaulting.
type Registry struct {
	semantics map[string]Semantics
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{semantics: make(map[string]Semantics)}
}

// DefaultRegistry returns a registry preloaded with the variables this tool
// collects out of the box.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(VariablePrecipitation, SemanticsAdditive)
	r.Register(VariableWindSpeed, SemanticsMean)
	r.Register(VariableWindDirection, SemanticsCircularMean)
	return r
}

// Register binds a variable code to its semantics, replacing any previous
// binding.
func (r *Registry) Register(variableCode string, s Semantics) {
	r.semantics[variableCode] = s
}

// Lookup resolves the semantics for a variable code.
func (r *Registry) Lookup(variableCode string) (Semantics, error) {
	s, ok := r.semantics[variableCode]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, variableCode)
	}
	return s, nil
}
