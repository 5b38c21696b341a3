package numtest

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Reference computes the result of op on the given operands with gonum.
// Eigenvalues are returned in ascending order as a column vector; dot products as a 1x1 matrix.
func Reference(op Operation, operands []*mat.CDense) (*mat.CDense, error) {
	want := map[Operation]int{Gemv: 2, Gemm: 2, Dot: 2, Heevr: 1, FFT: 1, FFT2D: 1}[op]
	if len(operands) != want {
		return nil, errors.Errorf("%s takes %d operands, got %d", op, want, len(operands))
	}

	switch op {
	case Gemv:
		return gemv(operands[0], operands[1])
	case Gemm:
		return gemm(operands[0], operands[1])
	case Dot:
		return dot(operands[0], operands[1])
	case Heevr:
		return eigvalsh(operands[0])
	case FFT:
		return fft(operands[0]), nil
	case FFT2D:
		return fft2(operands[0]), nil
	default:
		return nil, errors.Errorf("unknown operation %d", op)
	}
}

// vector views a column or row vector as a blas vector.
func vector(m *mat.CDense) cblas128.Vector {
	raw := m.RawCMatrix()
	r, c := m.Dims()
	if c != 1 && r != 1 {
		panic(fmt.Sprintf("%dx%d is not a vector", r, c))
	}
	if c == 1 {
		return cblas128.Vector{N: r, Inc: raw.Stride, Data: raw.Data}
	}
	return cblas128.Vector{N: c, Inc: 1, Data: raw.Data}
}

func gemv(a, x *mat.CDense) (*mat.CDense, error) {
	n, m := a.Dims()
	if xr, xc := x.Dims(); xr != m || xc != 1 {
		return nil, errors.Wrap(mat.ErrShape, fmt.Sprintf("%dx%d %dx%d", n, m, xr, xc))
	}
	y := mat.NewCDense(n, 1, nil)
	cblas128.Gemv(blas.NoTrans, 1, a.RawCMatrix(), vector(x), 0, vector(y))
	return y, nil
}

func gemm(a, b *mat.CDense) (*mat.CDense, error) {
	n, m := a.Dims()
	br, k := b.Dims()
	if br != m {
		return nil, errors.Wrap(mat.ErrShape, fmt.Sprintf("%dx%d %dx%d", n, m, br, k))
	}
	c := mat.NewCDense(n, k, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.RawCMatrix(), b.RawCMatrix(), 0, c.RawCMatrix())
	return c, nil
}

// dot conjugates its first argument.
func dot(x, y *mat.CDense) (*mat.CDense, error) {
	xv, yv := vector(x), vector(y)
	if xv.N != yv.N {
		return nil, errors.Wrap(mat.ErrShape, fmt.Sprintf("%d %d", xv.N, yv.N))
	}
	return mat.NewCDense(1, 1, []complex128{cblas128.Dotc(xv, yv)}), nil
}

// eigvalsh returns the eigenvalues of the Hermitian matrix a.
// Only the lower triangle of a is read.
// A complex matrix H = S + iT is diagonalized through the real symmetric matrix [S -T; T S],
// whose spectrum is that of H with every eigenvalue doubled.
func eigvalsh(a *mat.CDense) (*mat.CDense, error) {
	n, c := a.Dims()
	if n != c {
		return nil, errors.WithStack(mat.ErrSquare)
	}

	isComplex := false
	for i := range n {
		for j := 0; j < i; j++ {
			if imag(a.At(i, j)) != 0 {
				isComplex = true
			}
		}
	}

	dim := n
	if isComplex {
		dim = 2 * n
	}
	sym := mat.NewSymDense(dim, nil)
	for i := range n {
		for j := 0; j <= i; j++ {
			v := a.At(i, j)
			sym.SetSym(i, j, real(v))
			if !isComplex {
				continue
			}
			sym.SetSym(n+i, n+j, real(v))
			if i == j {
				continue
			}
			// The lower left block is T, which is antisymmetric.
			sym.SetSym(n+i, j, imag(v))
			sym.SetSym(n+j, i, -imag(v))
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, false); !ok {
		return nil, errors.Errorf("eigen decomposition of %dx%d failed", n, n)
	}
	vals := es.Values(nil)

	w := mat.NewCDense(n, 1, nil)
	step := dim / n
	for i := range n {
		w.Set(i, 0, complex(vals[i*step], 0))
	}
	return w, nil
}

// fft transforms a column vector with the same sign and scaling as numpy.fft.fft.
func fft(a *mat.CDense) *mat.CDense {
	n, _ := a.Dims()
	seq := make([]complex128, n)
	for i := range n {
		seq[i] = a.At(i, 0)
	}
	coeff := fourier.NewCmplxFFT(n).Coefficients(nil, seq)
	return mat.NewCDense(n, 1, coeff)
}

// fft2 transforms every row and then every column.
func fft2(a *mat.CDense) *mat.CDense {
	n, m := a.Dims()
	b := mat.NewCDense(n, m, nil)

	rowFFT := fourier.NewCmplxFFT(m)
	row := make([]complex128, m)
	for i := range n {
		for j := range m {
			row[j] = a.At(i, j)
		}
		row = rowFFT.Coefficients(row, row)
		for j, v := range row {
			b.Set(i, j, v)
		}
	}

	colFFT := fourier.NewCmplxFFT(n)
	col := make([]complex128, n)
	for j := range m {
		for i := range n {
			col[i] = b.At(i, j)
		}
		col = colFFT.Coefficients(col, col)
		for i, v := range col {
			b.Set(i, j, v)
		}
	}
	return b
}
