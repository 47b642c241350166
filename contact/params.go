// Package contact implements an elastic foundation contact model between two
// non-deforming triangulated surfaces that are allowed to interpenetrate.
// Per step it detects the overlapping triangle pairs and local overlap depth
// with a temporal-coherence search, converts depth to pressure through a
// linear or nonlinear constitutive law (lumped or per-side variable
// properties), and reduces the per-triangle pressures into net forces,
// moments, and whole-mesh and per-region statistics for both surfaces.
package contact

import (
	"fmt"

	"github.com/jointmech/articular/mesh"
)

// Formulation selects the depth-pressure relationship of the elastic
// foundation law.
type Formulation uint8

const (
	Linear Formulation = iota
	Nonlinear
)

func (f Formulation) String() string {
	switch f {
	case Linear:
		return "linear"
	case Nonlinear:
		return "nonlinear"
	}
	return fmt.Sprintf("Formulation(%d)", uint8(f))
}

// ParseFormulation converts the configuration strings "linear" and
// "nonlinear" into a Formulation.
func ParseFormulation(s string) (Formulation, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "nonlinear":
		return Nonlinear, nil
	}
	return 0, fmt.Errorf("contact: unknown elastic foundation formulation %q (want \"linear\" or \"nonlinear\")", s)
}

// Parameters holds the material properties of one mesh side. The uniform
// values are used for every triangle unless the corresponding variable flag
// is set, in which case the surface must carry per-triangle data.
type Parameters struct {
	UseVariableThickness      bool
	UseVariableElasticModulus bool
	UseVariablePoissonsRatio  bool

	ElasticModulus float64 // Uniform elastic modulus [Pa]
	PoissonsRatio  float64 // Uniform Poisson ratio
	Thickness      float64 // Uniform elastic layer thickness [m]
}

// Validate checks the uniform parameter ranges.
func (p Parameters) Validate() error {
	if p.ElasticModulus <= 0 {
		return fmt.Errorf("contact: elastic modulus %g must be positive", p.ElasticModulus)
	}
	if p.Thickness <= 0 {
		return fmt.Errorf("contact: thickness %g must be positive", p.Thickness)
	}
	if p.PoissonsRatio < 0 || p.PoissonsRatio >= 0.5 {
		return fmt.Errorf("contact: poissons ratio %g outside [0, 0.5)", p.PoissonsRatio)
	}
	return nil
}

// validateAgainst checks that every variable-property flag is matched by
// per-triangle data on the surface.
func (p Parameters) validateAgainst(s mesh.Surface) error {
	if p.UseVariableThickness && !s.HasVariableThickness() {
		return fmt.Errorf("contact: mesh %s has no per-triangle thickness data", s.Name())
	}
	if p.UseVariableElasticModulus && !s.HasVariableElasticModulus() {
		return fmt.Errorf("contact: mesh %s has no per-triangle elastic modulus data", s.Name())
	}
	if p.UseVariablePoissonsRatio && !s.HasVariablePoissonsRatio() {
		return fmt.Errorf("contact: mesh %s has no per-triangle poissons ratio data", s.Name())
	}
	return nil
}

// Config is the immutable configuration of an ArticularContactForce.
type Config struct {
	// Accepted overlap depth band. Depths outside [MinProximity, MaxProximity]
	// are treated as non-contacting. MinProximity <= 0 <= MaxProximity.
	MinProximity float64
	MaxProximity float64

	Formulation Formulation
	LumpedModel bool // Combine both sides into one effective elastic layer

	// Verbose: 0 silent, 1 step summaries and solver diagnostics,
	// 2 per-triangle detail.
	Verbose int

	Casting Parameters
	Target  Parameters
}

// Validate checks the configuration ranges and both parameter sets.
func (c Config) Validate() error {
	if c.MinProximity > 0 || c.MaxProximity < 0 || c.MinProximity > c.MaxProximity {
		return fmt.Errorf("contact: proximity band [%g, %g] must satisfy min <= 0 <= max",
			c.MinProximity, c.MaxProximity)
	}
	if c.Formulation != Linear && c.Formulation != Nonlinear {
		return fmt.Errorf("contact: invalid formulation %v", c.Formulation)
	}
	if c.Verbose < 0 || c.Verbose > 2 {
		return fmt.Errorf("contact: verbose level %d outside [0, 2]", c.Verbose)
	}
	if err := c.Casting.Validate(); err != nil {
		return fmt.Errorf("casting params: %w", err)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target params: %w", err)
	}
	return nil
}
