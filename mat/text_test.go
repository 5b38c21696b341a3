package mat

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func rawData(m *mat.CDense) []complex128 {
	rows, cols := m.Dims()
	data := make([]complex128, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			data = append(data, m.At(i, j))
		}
	}
	return data
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind Kind
		rows int
		cols int
	}{
		{kind: Float, rows: 7, cols: 3},
		{kind: Double, rows: 1, cols: 13},
		{kind: ComplexFloat, rows: 5, cols: 5},
		{kind: ComplexDouble, rows: 11, cols: 1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s %dx%d", test.kind, test.rows, test.cols), func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewPCG(1, uint64(test.kind)))
			m := Rand(rng, test.kind, test.rows, test.cols)

			var b bytes.Buffer
			if err := Encode(&b, m, test.kind); err != nil {
				t.Fatalf("%+v", err)
			}
			if strings.Count(b.String(), "\n") != 1 || strings.Count(b.String(), "\t") != test.rows*test.cols {
				t.Fatalf("%q", b.String())
			}

			// Operands are written on one line, so the decoded matrix is a row vector.
			decoded, err := Decode(b.String(), test.kind)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if r, c := decoded.Dims(); r != 1 || c != test.rows*test.cols {
				t.Fatalf("%d %d", r, c)
			}
			if diff := cmp.Diff(rawData(m), rawData(decoded)); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		s    string
		kind Kind
		rows int
		cols int
		data []complex128
	}{
		{
			s:    "1\t2\t\n3\t4\t\n",
			kind: Double,
			rows: 2, cols: 2,
			data: []complex128{1, 2, 3, 4},
		},
		{
			s:    "\n-0.5\t\n1e-05\t\n2.25\t\n\n",
			kind: Double,
			rows: 3, cols: 1,
			data: []complex128{-0.5, 1e-05, 2.25},
		},
		{
			s:    "(1,2)\t(3, -4)\t\n(0,0)\t(-1.5,1e+20)\t\n",
			kind: ComplexDouble,
			rows: 2, cols: 2,
			data: []complex128{complex(1, 2), complex(3, -4), 0, complex(-1.5, 1e20)},
		},
		{
			s:    "(0.25 0.5)\t\n",
			kind: ComplexFloat,
			rows: 1, cols: 1,
			data: []complex128{complex(0.25, 0.5)},
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%q", test.s), func(t *testing.T) {
			t.Parallel()
			m, err := Decode(test.s, test.kind)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if r, c := m.Dims(); r != test.rows || c != test.cols {
				t.Fatalf("%d %d, expected %d %d", r, c, test.rows, test.cols)
			}
			if diff := cmp.Diff(test.data, rawData(m)); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		s          string
		kind       Kind
		parseError bool
	}{
		{s: "", kind: Double},
		{s: "\t\n\t\n", kind: Double},
		{s: "1\t2\t\n3\t\n", kind: Double},
		{s: "1\tx\t\n", kind: Double, parseError: true},
		{s: "(1,2,3)\t\n", kind: ComplexDouble, parseError: true},
		{s: "(1)\t\n", kind: ComplexFloat, parseError: true},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%q", test.s), func(t *testing.T) {
			t.Parallel()
			_, err := Decode(test.s, test.kind)
			if err == nil {
				t.Fatalf("expected error")
			}
			var perr *ParseError
			if errors.As(err, &perr) != test.parseError {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestDecodeNumber(t *testing.T) {
	t.Parallel()
	v, err := DecodeNumber("32\n", Double)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if v != 32 {
		t.Fatalf("%v", v)
	}

	v, err = DecodeNumber("(70,-8)\n", ComplexDouble)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if v != complex(70, -8) {
		t.Fatalf("%v", v)
	}
}

func TestWriteHamiltonian(t *testing.T) {
	t.Parallel()
	h := M([][]complex128{
		{0, -2.8},
		{-2.8, complex(0.5, -1)},
	}).CDense()

	var b bytes.Buffer
	if err := WriteHamiltonian(&b, h); err != nil {
		t.Fatalf("%+v", err)
	}
	expected := "(0,0)\t(-2.8,0)\t\n(-2.8,0)\t(0.5,-1)\t\n"
	if b.String() != expected {
		t.Fatalf("%q, expected %q", b.String(), expected)
	}

	read, err := ReadHamiltonian(&b)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff(rawData(h), rawData(read)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestWriteCoordinates(t *testing.T) {
	t.Parallel()
	coords := []r3.Vec{{X: 0, Y: 0.142, Z: 0}, {X: -1.5, Y: 2, Z: 1e-9}}

	var b bytes.Buffer
	if err := WriteCoordinates(&b, coords); err != nil {
		t.Fatalf("%+v", err)
	}
	expected := "0\t0.142\t0\n-1.5\t2\t1e-09\n"
	if b.String() != expected {
		t.Fatalf("%q, expected %q", b.String(), expected)
	}

	read, err := ReadCoordinates(&b)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff(coords, read); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
