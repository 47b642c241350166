package contact

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// fileConfig mirrors the INI layout of a contact configuration deck:
//
//	[contact]
//	min-proximity = 0.0
//	max-proximity = 0.01
//	elastic-foundation-formulation = nonlinear
//	use-lumped-contact-model = false
//	verbose = 0
//
//	[params "casting"]
//	elastic-modulus = 5e6
//	poissons-ratio = 0.45
//	thickness = 0.003
//	use-variable-thickness = true
//
//	[params "target"]
//	...
type fileConfig struct {
	Contact struct {
		MinProximity                 float64 `gcfg:"min-proximity"`
		MaxProximity                 float64 `gcfg:"max-proximity"`
		ElasticFoundationFormulation string  `gcfg:"elastic-foundation-formulation"`
		UseLumpedContactModel        bool    `gcfg:"use-lumped-contact-model"`
		Verbose                      int     `gcfg:"verbose"`
	}
	Params map[string]*struct {
		UseVariableThickness      bool    `gcfg:"use-variable-thickness"`
		UseVariableElasticModulus bool    `gcfg:"use-variable-elastic-modulus"`
		UseVariablePoissonsRatio  bool    `gcfg:"use-variable-poissons-ratio"`
		ElasticModulus            float64 `gcfg:"elastic-modulus"`
		PoissonsRatio             float64 `gcfg:"poissons-ratio"`
		Thickness                 float64 `gcfg:"thickness"`
	}
}

// LoadConfig reads and validates a Config from an INI file.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if err := gcfg.ReadFileInto(&fc, path); err != nil {
		return Config{}, fmt.Errorf("contact: reading config %s: %w", path, err)
	}

	form, err := ParseFormulation(fc.Contact.ElasticFoundationFormulation)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		MinProximity: fc.Contact.MinProximity,
		MaxProximity: fc.Contact.MaxProximity,
		Formulation:  form,
		LumpedModel:  fc.Contact.UseLumpedContactModel,
		Verbose:      fc.Contact.Verbose,
	}
	for _, side := range []string{"casting", "target"} {
		p, ok := fc.Params[side]
		if !ok {
			return Config{}, fmt.Errorf("contact: config %s is missing [params %q]", path, side)
		}
		params := Parameters{
			UseVariableThickness:      p.UseVariableThickness,
			UseVariableElasticModulus: p.UseVariableElasticModulus,
			UseVariablePoissonsRatio:  p.UseVariablePoissonsRatio,
			ElasticModulus:            p.ElasticModulus,
			PoissonsRatio:             p.PoissonsRatio,
			Thickness:                 p.Thickness,
		}
		if side == "casting" {
			cfg.Casting = params
		} else {
			cfg.Target = params
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("contact: config %s: %w", path, err)
	}
	return cfg, nil
}
