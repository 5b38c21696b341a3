// Package plasmon generates tight-binding samples and writes their Hamiltonian and site coordinates as text.
package plasmon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tcm/plasmon/lattice"
	"github.com/tcm/plasmon/mat"
)

const (
	prefixHamiltonian = "Hamiltonian"
	prefixCoordinates = "Coordinates"
)

type SampleType string

const (
	TriangleZigzag   SampleType = "triangle:zigzag"
	TriangleArmchair SampleType = "triangle:armchair"
	SierpinskiCarpet SampleType = "sierpinski:carpet"
	Square           SampleType = "square"
	Periodic         SampleType = "periodic"
)

var (
	SampleTypes = []SampleType{TriangleZigzag, TriangleArmchair, SierpinskiCarpet, Square, Periodic}
)

func ParseSampleType(s string) (SampleType, error) {
	for _, t := range SampleTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.WithStack(&ConfigError{Param: "type", Reason: fmt.Sprintf("invalid choice %q", s)})
}

// ConfigError reports a missing or invalid generator parameter.
type ConfigError struct {
	Type   SampleType
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("--%s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("%s: --%s: %s", e.Type, e.Param, e.Reason)
}

// Params are the geometry parameters of a sample.
// Width is used by every type except the Sierpinski carpet, which uses Start and Depth.
type Params struct {
	Type            SampleType
	LatticeConstant float64
	HoppingValue    float64

	Width *int
	Start *int
	Depth *int
}

// MaxCarpetSide bounds the side start·3^depth of a Sierpinski carpet.
const MaxCarpetSide = 1 << 15

// Validate checks that the parameters needed by p.Type are present.
func (p Params) Validate() error {
	cfgErr := func(param, reason string) error {
		return errors.WithStack(&ConfigError{Type: p.Type, Param: param, Reason: reason})
	}
	if _, err := ParseSampleType(string(p.Type)); err != nil {
		return errors.Wrap(err, "")
	}
	if !(p.LatticeConstant > 0) {
		return cfgErr("lattice-constant", fmt.Sprintf("%v is not positive", p.LatticeConstant))
	}

	required := map[string]*int{"width": p.Width}
	if p.Type == SierpinskiCarpet {
		required = map[string]*int{"start": p.Start, "depth": p.Depth}
	}
	for _, name := range []string{"width", "start", "depth"} {
		v, ok := required[name]
		if !ok {
			continue
		}
		switch {
		case v == nil:
			return cfgErr(name, "required")
		case *v < 0:
			return cfgErr(name, fmt.Sprintf("%d is negative", *v))
		}
	}
	if p.Type == SierpinskiCarpet {
		if *p.Start == 0 {
			return cfgErr("start", "must be positive")
		}
		if *p.Start > MaxCarpetSide {
			return cfgErr("start", fmt.Sprintf("%d exceeds %d", *p.Start, MaxCarpetSide))
		}
		side := *p.Start
		for range *p.Depth {
			if side > MaxCarpetSide/3 {
				return cfgErr("depth", fmt.Sprintf("side %d·3^%d exceeds %d", *p.Start, *p.Depth, MaxCarpetSide))
			}
			side *= 3
		}
	}
	return nil
}

// Suffix is the part of the output file names that encodes the geometry parameters.
func (p Params) Suffix() string {
	if p.Type == SierpinskiCarpet {
		return strconv.Itoa(*p.Start) + "." + strconv.Itoa(*p.Depth)
	}
	return strconv.Itoa(*p.Width)
}

// Build constructs and finalizes the sample described by p.
func Build(p Params) (*lattice.System, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}

	var sample *lattice.Sample
	switch p.Type {
	case TriangleZigzag:
		sample = triangleZigzag(*p.Width, p.LatticeConstant)
	case TriangleArmchair:
		sample = triangleArmchair(*p.Width, p.LatticeConstant)
	case SierpinskiCarpet:
		sample = sierpinskiCarpet(*p.Start, *p.Depth, p.LatticeConstant)
	case Square:
		sample = lattice.SquareSheet(*p.Width, *p.Width, false, p.LatticeConstant)
	case Periodic:
		sample = lattice.HoneycombSheet(*p.Width, *p.Width, true, p.LatticeConstant)
	}

	if err := sample.FinalizeSites(); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("%#v", p))
	}
	if err := sample.NeighborHopping(-p.HoppingValue); err != nil {
		return nil, errors.Wrap(err, "")
	}
	sys, err := sample.Finalize()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return sys, nil
}

// Save writes the Hamiltonian and coordinates of sys into dir.
// It returns the paths of the two files.
func Save(dir string, p Params, sys *lattice.System) (string, string, error) {
	hPath := filepath.Join(dir, strings.Join([]string{prefixHamiltonian, p.Suffix(), "dat"}, "."))
	if err := writeFile(hPath, func(f *os.File) error { return mat.WriteHamiltonian(f, sys.Hamiltonian) }); err != nil {
		return "", "", errors.Wrap(err, "")
	}

	cPath := filepath.Join(dir, strings.Join([]string{prefixCoordinates, p.Suffix(), "dat"}, "."))
	if err := writeFile(cPath, func(f *os.File) error { return mat.WriteCoordinates(f, sys.Coordinates) }); err != nil {
		return "", "", errors.Wrap(err, "")
	}
	return hPath, cPath, nil
}

func writeFile(fpath string, write func(*os.File) error) error {
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err1 := write(f); err1 != nil && err == nil {
		err = errors.Wrap(err1, fpath)
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, fpath)
	}
	return err
}
