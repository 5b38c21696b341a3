package mat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ParseError reports a token that could not be read as a matrix element.
type ParseError struct {
	Line  int
	Col   int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d column %d: %q: %v", e.Line, e.Col, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Encode writes m in row-major order on a single line, every element followed by a tab.
// This is the layout the native kernels read from standard input.
func Encode(w io.Writer, m mat.CMatrix, k Kind) error {
	bw := bufio.NewWriter(w)
	rows, cols := m.Dims()
	for i := range rows {
		for j := range cols {
			bw.WriteString(k.Format(m.At(i, j)))
			bw.WriteByte('\t')
		}
	}
	bw.WriteByte('\n')
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// WriteHamiltonian writes one line per row with every element formatted as (real,imag) and followed by a tab.
func WriteHamiltonian(w io.Writer, h mat.CMatrix) error {
	bw := bufio.NewWriter(w)
	rows, cols := h.Dims()
	for i := range rows {
		for j := range cols {
			v := h.At(i, j)
			bw.WriteByte('(')
			bw.WriteString(strconv.FormatFloat(real(v), 'g', -1, 64))
			bw.WriteByte(',')
			bw.WriteString(strconv.FormatFloat(imag(v), 'g', -1, 64))
			bw.WriteString(")\t")
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// WriteCoordinates writes one tab separated x, y, z triple per line.
func WriteCoordinates(w io.Writer, coords []r3.Vec) error {
	bw := bufio.NewWriter(w)
	for _, c := range coords {
		for i, v := range []float64{c.X, c.Y, c.Z} {
			if i > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Decode parses rows separated by newlines and elements separated by tabs.
// Empty tokens, such as the one after a trailing tab, are skipped.
func Decode(s string, k Kind) (*mat.CDense, error) {
	s = strings.Trim(s, "\n")
	if strings.TrimSpace(s) == "" {
		return nil, errors.Errorf("empty matrix")
	}

	data := make([]complex128, 0)
	cols := -1
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		n := 0
		for _, tok := range strings.Split(strings.TrimSuffix(line, "\r"), "\t") {
			if strings.TrimSpace(tok) == "" {
				continue
			}
			v, err := k.Parse(tok)
			if err != nil {
				return nil, errors.WithStack(&ParseError{Line: i, Col: n, Token: tok, Err: err})
			}
			data = append(data, v)
			n++
		}

		switch {
		case cols == -1:
			cols = n
		case n != cols:
			return nil, errors.Errorf("line %d has %d elements, expected %d", i, n, cols)
		}
	}
	if cols == 0 {
		return nil, errors.Errorf("no elements in %d lines", len(lines))
	}

	return mat.NewCDense(len(lines), cols, data), nil
}

// DecodeNumber parses output that holds a single value.
func DecodeNumber(s string, k Kind) (complex128, error) {
	s = strings.Trim(s, "\n")
	v, err := k.Parse(strings.Trim(s, "\t"))
	if err != nil {
		return 0, errors.WithStack(&ParseError{Token: s, Err: err})
	}
	return v, nil
}

// ReadHamiltonian reads back what WriteHamiltonian wrote.
func ReadHamiltonian(r io.Reader) (*mat.CDense, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	h, err := Decode(string(b), ComplexDouble)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return h, nil
}

// ReadCoordinates reads back what WriteCoordinates wrote.
func ReadCoordinates(r io.Reader) ([]r3.Vec, error) {
	coords := make([]r3.Vec, 0)
	sc := bufio.NewScanner(r)
	line := -1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.Errorf("line %d: %#v", line, fields)
		}
		var xyz [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.WithStack(&ParseError{Line: line, Col: i, Token: f, Err: err})
			}
			xyz[i] = v
		}
		coords = append(coords, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return coords, nil
}
