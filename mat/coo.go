package mat

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix in coordinate format.
// Entries appended to the same position are summed by Compact.
type COO struct {
	rows int
	cols int
	Data []vRowCol
}

func M(dense [][]complex128) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]vRowCol, 0)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	return &COO{rows: rows, cols: cols, Data: make([]vRowCol, 0)}
}

// Append adds v to the entry at (row, col).
func (m *COO) Append(row, col int, v complex128) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("%d %d out of %d %d", row, col, m.rows, m.cols))
	}
	m.Data = append(m.Data, vRowCol{v: v, row: row, col: col})
}

// Compact sums duplicate entries, drops zeros and sorts entries in row-major order.
func (m *COO) Compact() {
	slices.SortStableFunc(m.Data, rowMajor)
	out := m.Data[:0]
	for _, v := range m.Data {
		if n := len(out); n > 0 && out[n-1].row == v.row && out[n-1].col == v.col {
			out[n-1].v += v.v
			continue
		}
		out = append(out, v)
	}
	m.Data = slices.DeleteFunc(out, func(v vRowCol) bool {
		return v.v == 0
	})
}

func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows {
		return false
	}
	if a.cols != b.cols {
		return false
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i, av := range a.Data {
		bv := b.Data[i]
		if av != bv {
			return false
		}
	}
	return true
}

// CDense returns m as a dense gonum matrix.
func (m *COO) CDense() *mat.CDense {
	d := mat.NewCDense(m.rows, m.cols, nil)
	for _, v := range m.Data {
		d.Set(v.row, v.col, d.At(v.row, v.col)+v.v)
	}
	return d
}

func (m *COO) String() string {
	d := m.CDense()
	lines := []string{}
	for i := 0; i < m.rows; i++ {
		cs := []string{}
		for j := 0; j < m.cols; j++ {
			v := d.At(i, j)
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

func format(v float64) string {
	// -0 prints as 0.
	if v == 0 {
		return " 0"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v > 0 {
		s = " " + s
	}
	return s
}
