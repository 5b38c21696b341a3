package numtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	plmat "github.com/tcm/plasmon/mat"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	p, err := DefaultConfig().Plan()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := Plan{
		BinDir:     "tests",
		Passes:     2,
		Operations: Operations,
		Kinds:      plmat.Kinds,
		Tolerance:  DefaultTolerance,
		Dims:       map[Operation][]Range{},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	cfgPath := filepath.Join(dir, "plan.yaml")
	cfg := `bin_dir: build/tests
passes: 1
operations: [heevr, dot]
kinds: [complex-double]
tolerance:
  complex-double: 1.0e-8
dims:
  heevr: [[100, 200]]
ledger: runs.db
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("%+v", err)
	}

	c, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	p, err := c.Plan()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := Plan{
		BinDir:     "build/tests",
		Passes:     1,
		Operations: []Operation{Heevr, Dot},
		Kinds:      []plmat.Kind{plmat.ComplexDouble},
		Tolerance: map[plmat.Kind]float64{
			plmat.Float:         1e-3,
			plmat.Double:        1e-5,
			plmat.ComplexFloat:  1e-2,
			plmat.ComplexDouble: 1e-8,
		},
		Dims:   map[Operation][]Range{Heevr: {{100, 200}}},
		Ledger: "runs.db",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []func(c *Config){
		func(c *Config) { c.Passes = 0 },
		func(c *Config) { c.Operations = []string{"gemv", "syrk"} },
		func(c *Config) { c.Operations = nil },
		func(c *Config) { c.Kinds = []string{"half"} },
		func(c *Config) { c.Kinds = []string{} },
		func(c *Config) { c.Tolerance["quad"] = 1 },
		func(c *Config) { c.Dims = map[string][][2]int{"fft3d": {{1, 2}}} },
	}
	for i, modify := range tests {
		c := DefaultConfig()
		modify(&c)
		if _, err := c.Plan(); err == nil {
			t.Fatalf("%d expected error", i)
		}
	}
}
