package mat

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the element type of a matrix exchanged with the native kernels.
type Kind int

const (
	Float Kind = iota
	Double
	ComplexFloat
	ComplexDouble
)

var (
	// Kinds lists every kind in the order the kernels are usually exercised.
	Kinds = []Kind{Float, ComplexFloat, Double, ComplexDouble}

	kindNames = map[Kind]string{
		Float:         "float",
		Double:        "double",
		ComplexFloat:  "complex-float",
		ComplexDouble: "complex-double",
	}
)

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return -1, errors.Errorf("invalid kind %q", s)
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return name
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return errors.Wrap(err, "")
	}
	*k = v
	return nil
}

func (k Kind) IsComplex() bool {
	return k == ComplexFloat || k == ComplexDouble
}

// Real returns the real kind with the same precision as k.
func (k Kind) Real() Kind {
	switch k {
	case ComplexFloat:
		return Float
	case ComplexDouble:
		return Double
	default:
		return k
	}
}

func (k Kind) bitSize() int {
	switch k {
	case Float, ComplexFloat:
		return 32
	default:
		return 64
	}
}

// Rand draws a value uniformly from [0, 1) for real kinds and from [0, 1)+[0, 1)i for complex kinds.
// Single precision values are rounded to float32 so that their text form is exact.
func (k Kind) Rand(rng *rand.Rand) complex128 {
	re := k.round(rng.Float64())
	if !k.IsComplex() {
		return complex(re, 0)
	}
	im := k.round(rng.Float64())
	return complex(re, im)
}

func (k Kind) round(v float64) float64 {
	if k.bitSize() == 32 {
		return float64(float32(v))
	}
	return v
}

// Format formats v the way the native kernels read it.
func (k Kind) Format(v complex128) string {
	if !k.IsComplex() {
		return k.formatFloat(real(v))
	}
	return "(" + k.formatFloat(real(v)) + ", " + k.formatFloat(imag(v)) + ")"
}

func (k Kind) formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, k.bitSize())
}

// Parse parses a single token, rounding to the precision of k.
// Complex tokens look like (re,im) or (re, im), with the parentheses optional.
func (k Kind) Parse(s string) (complex128, error) {
	s = strings.TrimSpace(s)
	if !k.IsComplex() {
		v, err := strconv.ParseFloat(s, k.bitSize())
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		return complex(v, 0), nil
	}

	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 2 {
		return 0, errors.Errorf("%q has %d components", s, len(parts))
	}
	re, err := strconv.ParseFloat(parts[0], k.bitSize())
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	im, err := strconv.ParseFloat(parts[1], k.bitSize())
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return complex(re, im), nil
}
