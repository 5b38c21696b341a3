package mat

import (
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Rand returns a rows x cols matrix of independent draws of kind k.
func Rand(rng *rand.Rand, k Kind, rows, cols int) *mat.CDense {
	data := make([]complex128, rows*cols)
	for i := range data {
		data[i] = k.Rand(rng)
	}
	return mat.NewCDense(rows, cols, data)
}

// Hermitize returns A + Aᵀ with the upper triangle conjugated.
// The diagonal keeps only its real part so that the result is exactly Hermitian.
func Hermitize(a *mat.CDense) *mat.CDense {
	n, c := a.Dims()
	if n != c {
		panic(mat.ErrSquare)
	}

	h := mat.NewCDense(n, n, nil)
	for i := range n {
		h.Set(i, i, complex(2*real(a.At(i, i)), 0))
		for j := 0; j < i; j++ {
			v := a.At(i, j) + a.At(j, i)
			h.Set(i, j, v)
			h.Set(j, i, cmplx.Conj(v))
		}
	}
	return h
}

// Round rounds every element of a to the precision of k in place, so that its text form is exact.
func Round(a *mat.CDense, k Kind) *mat.CDense {
	rows, cols := a.Dims()
	for i := range rows {
		for j := range cols {
			v := a.At(i, j)
			a.Set(i, j, complex(k.round(real(v)), k.round(imag(v))))
		}
	}
	return a
}
