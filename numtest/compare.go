package numtest

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	plmat "github.com/tcm/plasmon/mat"
)

// MismatchError reports the first element, in row-major order, whose error exceeds the tolerance.
type MismatchError struct {
	Op   Operation
	Kind plmat.Kind
	Row  int
	Col  int
	// Got is the value printed by the native kernel, Want the reference value.
	Got  complex128
	Want complex128
	Err  float64
	Tol  float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s<%s> mismatch at (%d, %d): got %s, want %s, error %g > %g",
		e.Op, e.Kind, e.Row, e.Col, e.Kind.Format(e.Got), e.Kind.Format(e.Want), e.Err, e.Tol)
}

// elementError is |got - want| divided by |got| when op compares relatively.
// A zero external value has no relative error, so the absolute error is used instead.
func elementError(op Operation, got, want complex128) float64 {
	diff := cmplx.Abs(got - want)
	if !op.relative() || got == 0 {
		return diff
	}
	return diff / cmplx.Abs(got)
}

// compare walks got and want in row-major order and returns the largest error seen.
// A NaN error is a violation.
func compare(op Operation, kind plmat.Kind, got, want *mat.CDense, tol float64) (float64, error) {
	rows, cols := want.Dims()
	var maxErr float64
	for i := range rows {
		for j := range cols {
			g, w := got.At(i, j), want.At(i, j)
			e := elementError(op, g, w)
			if !(e <= tol) {
				return e, &MismatchError{Op: op, Kind: kind, Row: i, Col: j, Got: g, Want: w, Err: e, Tol: tol}
			}
			maxErr = max(maxErr, e)
		}
	}
	return maxErr, nil
}
