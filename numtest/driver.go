// Package numtest checks native linear algebra and FFT kernels against reference computations.
//
// Every trial draws random dimensions and operands, writes the operands to the standard input of the kernel,
// parses what the kernel prints and compares it element by element with gonum.
// Trials run strictly one after another and the first failure stops the run.
package numtest

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	plmat "github.com/tcm/plasmon/mat"
)

// DefaultTolerance is the largest admissible error of each kind.
var DefaultTolerance = map[plmat.Kind]float64{
	plmat.Float:         1e-3,
	plmat.Double:        1e-5,
	plmat.ComplexFloat:  1e-2,
	plmat.ComplexDouble: 1e-5,
}

type Options struct {
	Invoker Invoker
	// Tolerance overrides DefaultTolerance per kind.
	Tolerance map[plmat.Kind]float64
	// Dims overrides DefaultDims per operation.
	Dims map[Operation][]Range
	Log  *log.Logger
	// Ledger is optional.
	Ledger *Ledger
}

type Driver struct {
	invoker   Invoker
	tolerance map[plmat.Kind]float64
	dims      map[Operation][]Range
	log       *log.Logger
	ledger    *Ledger
}

// Trial is the outcome of a single operation on a single kind.
type Trial struct {
	Pass int
	Op   Operation
	Kind plmat.Kind
	Dims []int
	// Stream selects the random stream of the trial within the run seed.
	Stream  uint64
	MaxErr  float64
	Elapsed time.Duration
	Skipped bool
}

func New(opts Options) (*Driver, error) {
	if opts.Invoker == nil {
		return nil, errors.Errorf("no invoker")
	}
	d := &Driver{
		invoker:   opts.Invoker,
		tolerance: make(map[plmat.Kind]float64),
		dims:      make(map[Operation][]Range),
		log:       opts.Log,
		ledger:    opts.Ledger,
	}
	if d.log == nil {
		d.log = log.New(io.Discard, "", 0)
	}

	for k, tol := range DefaultTolerance {
		d.tolerance[k] = tol
	}
	for k, tol := range opts.Tolerance {
		if !(tol >= 0) {
			return nil, errors.Errorf("invalid tolerance %v for %s", tol, k)
		}
		d.tolerance[k] = tol
	}

	for op, ranges := range DefaultDims {
		d.dims[op] = ranges
	}
	for op, ranges := range opts.Dims {
		if len(ranges) != op.numDims() {
			return nil, errors.Errorf("%s takes %d dimensions, got %d", op, op.numDims(), len(ranges))
		}
		for _, r := range ranges {
			if r[0] < 1 || r[1] < r[0] {
				return nil, errors.Errorf("invalid range %v for %s", r, op)
			}
		}
		d.dims[op] = ranges
	}
	return d, nil
}

// trialStream identifies a trial within a run, so that a filtered rerun with the same seed draws the same operands.
func trialStream(pass int, op Operation, kind plmat.Kind) uint64 {
	return uint64(pass)<<16 | uint64(op)<<8 | uint64(kind)
}

// Run exercises every operation on every kind, passes times over, and stops at the first failure.
func (d *Driver) Run(passes int, ops []Operation, kinds []plmat.Kind, seed uint64) ([]Trial, error) {
	if passes < 1 {
		return nil, errors.Errorf("passes %d", passes)
	}
	if len(ops) == 0 || len(kinds) == 0 {
		return nil, errors.Errorf("nothing to run: %d operations %d kinds", len(ops), len(kinds))
	}

	run := ""
	if d.ledger != nil {
		var err error
		if run, err = d.ledger.BeginRun(seed, time.Now()); err != nil {
			return nil, errors.Wrap(err, "")
		}
		d.log.Printf("run %s seed %d", run, seed)
	}

	trials := make([]Trial, 0, passes*len(ops)*len(kinds))
	for pass := range passes {
		for _, op := range ops {
			for _, kind := range kinds {
				t, err := d.Trial(pass, op, kind, seed)
				trials = append(trials, t)
				if d.ledger != nil {
					if err1 := d.ledger.Record(newTrialRecord(run, t, err)); err1 != nil && err == nil {
						err = errors.Wrap(err1, "")
					}
				}
				if err != nil {
					return trials, errors.Wrap(err, fmt.Sprintf("pass %d seed %d", pass, seed))
				}
			}
		}
	}
	return trials, nil
}

// Trial runs op on kind with operands drawn from the stream of the trial.
// FFTs of real kinds are skipped.
func (d *Driver) Trial(pass int, op Operation, kind plmat.Kind, seed uint64) (Trial, error) {
	t := Trial{Pass: pass, Op: op, Kind: kind, Stream: trialStream(pass, op, kind)}
	if op.complexOnly() && !kind.IsComplex() {
		d.log.Printf("trial %s<%s>: nothing to be done", op, kind)
		t.Skipped = true
		return t, nil
	}

	rng := rand.New(rand.NewPCG(seed, t.Stream))
	t.Dims = drawDims(rng, d.dims[op])
	d.log.Printf("trial %s<%s> %s", op, kind, dimString(op, t.Dims))
	operands := op.operands(rng, kind, t.Dims)

	start := time.Now()
	maxErr, err := d.Check(op, kind, t.Dims, operands)
	t.Elapsed = time.Since(start)
	t.MaxErr = maxErr
	if err != nil {
		return t, errors.Wrap(err, "")
	}
	d.log.Printf("success %s<%s> max error %g in %s", op, kind, maxErr, t.Elapsed)
	return t, nil
}

// Check sends operands to the native kernel of op and compares its output with the reference result.
// It returns the largest element error observed.
func (d *Driver) Check(op Operation, kind plmat.Kind, dims []int, operands []*mat.CDense) (float64, error) {
	shapes := op.operandShapes(dims)
	if len(operands) != len(shapes) {
		return 0, errors.Errorf("%s takes %d operands, got %d", op, len(shapes), len(operands))
	}
	var input bytes.Buffer
	for i, a := range operands {
		if r, c := a.Dims(); r != shapes[i][0] || c != shapes[i][1] {
			return 0, errors.Wrap(mat.ErrShape, fmt.Sprintf("operand %d of %s is %dx%d, expected %v", i, op, r, c, shapes[i]))
		}
		if err := plmat.Encode(&input, a, kind); err != nil {
			return 0, errors.Wrap(err, "")
		}
	}

	output, err := d.invoker.Invoke(op, kind, dims, input.Bytes())
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	got, err := decodeResult(op, kind, dims, output)
	if err != nil {
		perr := &ProcessError{Op: op, Args: processArgs(kind, dims), Output: string(output), Err: err}
		return 0, errors.WithStack(perr)
	}

	want, err := Reference(op, operands)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	maxErr, err := compare(op, kind, got, want, d.tolerance[kind])
	if err != nil {
		return maxErr, errors.WithStack(err)
	}
	return maxErr, nil
}

// decodeResult parses the output of a kernel into the shape of the result of op.
// Kernels may print a vector on one line or one element per line; any layout with the right number of
// elements is accepted and read in row-major order.
func decodeResult(op Operation, kind plmat.Kind, dims []int, output []byte) (*mat.CDense, error) {
	rows, cols := op.resultShape(dims)
	k := op.resultKind(kind)
	if op == Dot {
		v, err := plmat.DecodeNumber(string(output), k)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return mat.NewCDense(1, 1, []complex128{v}), nil
	}

	m, err := plmat.Decode(string(output), k)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	r, c := m.Dims()
	if r == rows && c == cols {
		return m, nil
	}
	if r*c != rows*cols {
		return nil, errors.Errorf("result is %dx%d, expected %dx%d", r, c, rows, cols)
	}
	data := make([]complex128, 0, r*c)
	for i := range r {
		for j := range c {
			data = append(data, m.At(i, j))
		}
	}
	return mat.NewCDense(rows, cols, data), nil
}

func processArgs(kind plmat.Kind, dims []int) []string {
	args := []string{kind.String()}
	for _, d := range dims {
		args = append(args, strconv.Itoa(d))
	}
	return args
}

func dimString(op Operation, dims []int) string {
	names := map[Operation][]string{
		Gemv:  {"n", "m"},
		Gemm:  {"n", "m", "k"},
		Dot:   {"n"},
		Heevr: {"n"},
		FFT:   {"n"},
		FFT2D: {"n", "m"},
	}[op]
	parts := make([]string, 0, len(dims))
	for i, d := range dims {
		parts = append(parts, fmt.Sprintf("%s=%d", names[i], d))
	}
	return strings.Join(parts, " ")
}
