package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights are per-signal multipliers (0.0-1.5) applied to base signal
// points. They are tunable business parameters, not invariants: the model's
// contract is monotonic response, clamped ranges, and graceful null
// handling, regardless of the values here.
type Weights struct {
	Sector  float64 `yaml:"sector"`
	Zone    float64 `yaml:"zone"`
	Billing float64 `yaml:"billing"`
	Roof    float64 `yaml:"roof"`
	Hours   float64 `yaml:"hours"`

	DemandBand    float64 `yaml:"demandBand"`
	OwnerOccupied float64 `yaml:"ownerOccupied"`
	SingleTenant  float64 `yaml:"singleTenant"`
}

// Profile maps opportunity types to weight sets.
type Profile struct {
	Default Weights            `yaml:"default"`
	ByType  map[string]Weights `yaml:"byType"`
}

// For returns the weights for an opportunity type, falling back to the
// profile default for unknown types.
func (p Profile) For(opportunityType string) Weights {
	if w, ok := p.ByType[normalize(opportunityType)]; ok {
		return w
	}
	return p.Default
}

var neutralWeights = Weights{
	Sector:        1.0,
	Zone:          1.0,
	Billing:       1.0,
	Roof:          1.0,
	Hours:         1.0,
	DemandBand:    1.0,
	OwnerOccupied: 1.0,
	SingleTenant:  1.0,
}

// DefaultProfile returns the compiled-in weight profile. The solar profile
// leans on billing and roof area; bill size is the strongest proxy for
// system size and payback.
func DefaultProfile() Profile {
	return Profile{
		Default: neutralWeights,
		ByType: map[string]Weights{
			"solar": {
				Sector:        1.0,
				Zone:          0.8,
				Billing:       1.2,
				Roof:          1.2,
				Hours:         1.0,
				DemandBand:    1.0,
				OwnerOccupied: 1.2,
				SingleTenant:  1.0,
			},
		},
	}
}

// LoadProfile reads a weight profile from a YAML file. An empty path returns
// the compiled-in defaults.
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read scoring profile: %w", err)
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse scoring profile: %w", err)
	}

	return profile, nil
}
