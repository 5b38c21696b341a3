package numtest

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	plmat "github.com/tcm/plasmon/mat"
)

// Config is the plan of a run, read from a YAML file on top of DefaultConfig.
type Config struct {
	BinDir     string              `yaml:"bin_dir"`
	Passes     int                 `yaml:"passes"`
	Operations []string            `yaml:"operations"`
	Kinds      []string            `yaml:"kinds"`
	Tolerance  map[string]float64  `yaml:"tolerance"`
	Dims       map[string][][2]int `yaml:"dims"`
	Ledger     string              `yaml:"ledger"`
}

func DefaultConfig() Config {
	c := Config{
		BinDir:    "tests",
		Passes:    2,
		Tolerance: make(map[string]float64),
	}
	for _, op := range Operations {
		c.Operations = append(c.Operations, op.String())
	}
	for _, k := range plmat.Kinds {
		c.Kinds = append(c.Kinds, k.String())
	}
	for k, tol := range DefaultTolerance {
		c.Tolerance[k.String()] = tol
	}
	return c
}

// LoadConfig reads path over the defaults.
// Tolerances and dimensions given in the file replace only the entries they name.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return c, nil
}

// Plan is a validated Config.
type Plan struct {
	BinDir     string
	Passes     int
	Operations []Operation
	Kinds      []plmat.Kind
	Tolerance  map[plmat.Kind]float64
	Dims       map[Operation][]Range
	Ledger     string
}

func (c Config) Plan() (Plan, error) {
	p := Plan{
		BinDir:    c.BinDir,
		Passes:    c.Passes,
		Tolerance: make(map[plmat.Kind]float64),
		Dims:      make(map[Operation][]Range),
		Ledger:    c.Ledger,
	}
	if p.Passes < 1 {
		return Plan{}, errors.Errorf("passes %d", p.Passes)
	}

	for _, s := range c.Operations {
		op, err := ParseOperation(s)
		if err != nil {
			return Plan{}, errors.Wrap(err, "")
		}
		p.Operations = append(p.Operations, op)
	}
	if len(p.Operations) == 0 {
		return Plan{}, errors.Errorf("no operations")
	}
	for _, s := range c.Kinds {
		k, err := plmat.ParseKind(s)
		if err != nil {
			return Plan{}, errors.Wrap(err, "")
		}
		p.Kinds = append(p.Kinds, k)
	}
	if len(p.Kinds) == 0 {
		return Plan{}, errors.Errorf("no kinds")
	}

	for s, tol := range c.Tolerance {
		k, err := plmat.ParseKind(s)
		if err != nil {
			return Plan{}, errors.Wrap(err, "tolerance")
		}
		p.Tolerance[k] = tol
	}
	for s, dims := range c.Dims {
		op, err := ParseOperation(s)
		if err != nil {
			return Plan{}, errors.Wrap(err, "dims")
		}
		ranges := make([]Range, 0, len(dims))
		for _, d := range dims {
			ranges = append(ranges, Range(d))
		}
		p.Dims[op] = ranges
	}
	return p, nil
}
