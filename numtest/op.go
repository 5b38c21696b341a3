package numtest

import (
	"math/rand/v2"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	plmat "github.com/tcm/plasmon/mat"
)

// Operation is a kernel exercised by the driver.
type Operation int

const (
	Gemv Operation = iota
	Gemm
	Dot
	Heevr
	FFT
	FFT2D
)

var (
	// Operations lists every operation in the order a full run exercises them.
	Operations = []Operation{Gemv, Gemm, Dot, Heevr, FFT, FFT2D}

	opNames = map[Operation]string{
		Gemv:  "gemv",
		Gemm:  "gemm",
		Dot:   "dot",
		Heevr: "heevr",
		FFT:   "fft",
		FFT2D: "fft2d",
	}
	opBinaries = map[Operation]string{
		Gemv:  "gemv",
		Gemm:  "gemm",
		Dot:   "dot",
		Heevr: "heevr",
		FFT:   "fft",
		FFT2D: "fft_2d",
	}
)

// Range is an inclusive interval of dimensions.
type Range [2]int

func (r Range) draw(rng *rand.Rand) int {
	return r[0] + rng.IntN(r[1]-r[0]+1)
}

// DefaultDims are the dimension ranges of each operation, one range per dimension argument.
// The eigenvalue problem is deliberately large.
var DefaultDims = map[Operation][]Range{
	Gemv:  {{5, 1000}, {5, 1000}},
	Gemm:  {{5, 1000}, {5, 1000}, {5, 1000}},
	Dot:   {{5, 10000}},
	Heevr: {{1200, 1200}},
	FFT:   {{10, 1000}},
	FFT2D: {{10, 100}, {10, 100}},
}

func ParseOperation(s string) (Operation, error) {
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}
	return -1, errors.Errorf("invalid operation %q", s)
}

func (op Operation) String() string {
	name, ok := opNames[op]
	if !ok {
		return "Operation(" + strconv.Itoa(int(op)) + ")"
	}
	return name
}

// Binary is the file name of the native executable implementing op.
func (op Operation) Binary() string { return opBinaries[op] }

// complexOnly reports whether op is undefined for real kinds.
func (op Operation) complexOnly() bool {
	return op == FFT || op == FFT2D
}

// relative reports whether results are compared by relative rather than absolute error.
func (op Operation) relative() bool {
	return !op.complexOnly()
}

// resultKind is the kind the native executable prints its result in.
// Hermitian eigenvalues are real whatever the element kind.
func (op Operation) resultKind(k plmat.Kind) plmat.Kind {
	if op == Heevr {
		return k.Real()
	}
	return k
}

func (op Operation) resultShape(dims []int) (int, int) {
	switch op {
	case Gemv, Heevr, FFT:
		return dims[0], 1
	case Gemm:
		return dims[0], dims[2]
	case Dot:
		return 1, 1
	default:
		return dims[0], dims[1]
	}
}

// operands draws the random inputs of op.
func (op Operation) operands(rng *rand.Rand, k plmat.Kind, dims []int) []*mat.CDense {
	switch op {
	case Gemv:
		n, m := dims[0], dims[1]
		return []*mat.CDense{plmat.Rand(rng, k, n, m), plmat.Rand(rng, k, m, 1)}
	case Gemm:
		n, m, kk := dims[0], dims[1], dims[2]
		return []*mat.CDense{plmat.Rand(rng, k, n, m), plmat.Rand(rng, k, m, kk)}
	case Dot:
		n := dims[0]
		return []*mat.CDense{plmat.Rand(rng, k, n, 1), plmat.Rand(rng, k, n, 1)}
	case Heevr:
		n := dims[0]
		return []*mat.CDense{plmat.Round(plmat.Hermitize(plmat.Rand(rng, k, n, n)), k)}
	case FFT:
		return []*mat.CDense{plmat.Rand(rng, k, dims[0], 1)}
	default:
		return []*mat.CDense{plmat.Rand(rng, k, dims[0], dims[1])}
	}
}

func drawDims(rng *rand.Rand, ranges []Range) []int {
	dims := make([]int, 0, len(ranges))
	for _, r := range ranges {
		dims = append(dims, r.draw(rng))
	}
	return dims
}

// operandShapes are the expected shapes of the inputs of op.
func (op Operation) operandShapes(dims []int) [][2]int {
	switch op {
	case Gemv:
		return [][2]int{{dims[0], dims[1]}, {dims[1], 1}}
	case Gemm:
		return [][2]int{{dims[0], dims[1]}, {dims[1], dims[2]}}
	case Dot:
		return [][2]int{{dims[0], 1}, {dims[0], 1}}
	case Heevr:
		return [][2]int{{dims[0], dims[0]}}
	case FFT:
		return [][2]int{{dims[0], 1}}
	default:
		return [][2]int{{dims[0], dims[1]}}
	}
}

func (op Operation) numDims() int {
	return len(DefaultDims[op])
}
