package lattice

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/tcm/plasmon/mat"
)

func TestNearestNeighbors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		lat       *Lattice
		neighbors [][]neighbor
	}{
		{
			name: "honeycomb",
			lat:  Honeycomb(0.24612),
			neighbors: [][]neighbor{
				{{dx: 0, dy: -1, to: 1}, {dx: 0, dy: 0, to: 1}, {dx: 1, dy: -1, to: 1}},
				{{dx: -1, dy: 1, to: 0}, {dx: 0, dy: 0, to: 0}, {dx: 0, dy: 1, to: 0}},
			},
		},
		{
			name: "square",
			lat:  Square(0.2),
			neighbors: [][]neighbor{
				{{dx: -1, dy: 0, to: 0}, {dx: 0, dy: -1, to: 0}, {dx: 0, dy: 1, to: 0}, {dx: 1, dy: 0, to: 0}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if !slices.EqualFunc(test.lat.neighbors, test.neighbors, slices.Equal[[]neighbor]) {
				t.Fatalf("%v, expected %v", test.lat.neighbors, test.neighbors)
			}
		})
	}
}

func TestSquareSheet(t *testing.T) {
	t.Parallel()
	s := SquareSheet(2, 2, false, 0.5)
	if err := s.FinalizeSites(); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.NeighborHopping(-1); err != nil {
		t.Fatalf("%+v", err)
	}
	sys, err := s.Finalize()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	// Sites are ordered (0,0) (0,1) (1,0) (1,1).
	hoppings := mat.M([][]complex128{
		{0, -1, -1, 0},
		{-1, 0, 0, -1},
		{-1, 0, 0, -1},
		{0, -1, -1, 0},
	})
	if !sys.Hoppings.Equal(hoppings) {
		t.Fatalf("%s, expected %s", sys.Hoppings, hoppings)
	}
	coords := []struct{ x, y float64 }{{0, 0}, {0, 0.5}, {0.5, 0}, {0.5, 0.5}}
	for i, c := range sys.Coordinates {
		if math.Abs(c.X-coords[i].x) > 1e-12 || math.Abs(c.Y-coords[i].y) > 1e-12 || c.Z != 0 {
			t.Fatalf("%d %v, expected %v", i, c, coords[i])
		}
	}
}

func TestHoneycombSheetPeriodic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		w     int
		bonds int
	}{
		{w: 3, bonds: 27},
		{w: 4, bonds: 48},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.w), func(t *testing.T) {
			t.Parallel()
			s := HoneycombSheet(test.w, test.w, true, 1)
			if err := s.FinalizeSites(); err != nil {
				t.Fatalf("%+v", err)
			}
			if err := s.NeighborHopping(-2.8); err != nil {
				t.Fatalf("%+v", err)
			}
			sys, err := s.Finalize()
			if err != nil {
				t.Fatalf("%+v", err)
			}

			n, _ := sys.Hamiltonian.Dims()
			if n != 2*test.w*test.w || len(sys.Coordinates) != n || len(sys.Tags) != n {
				t.Fatalf("%d %d %d", n, len(sys.Coordinates), len(sys.Tags))
			}
			if len(sys.Hoppings.Data) != 2*test.bonds {
				t.Fatalf("%d, expected %d", len(sys.Hoppings.Data), 2*test.bonds)
			}
			// Every site has three neighbours when the sheet wraps around.
			for i := range n {
				var neighbors int
				for j := range n {
					v := sys.Hamiltonian.At(i, j)
					if v != sys.Hamiltonian.At(j, i) {
						t.Fatalf("not symmetric at %d %d", i, j)
					}
					if v == -2.8 {
						neighbors++
					}
				}
				if neighbors != 3 {
					t.Fatalf("site %s has %d neighbors", sys.Tags[i], neighbors)
				}
			}
		})
	}
}

func TestSetDelete(t *testing.T) {
	t.Parallel()
	s := NewSample(Honeycomb(1))
	s.Set(Tag{0, 0, 0, 0}, 0.5)
	s.Set(Tag{0, 0, 0, 1}, 0)
	s.Set(Tag{1, 0, 0, 0}, 0)
	s.Delete(Tag{1, 0, 0, 0})
	if s.Len() != 2 || s.Has(Tag{1, 0, 0, 0}) {
		t.Fatalf("%d", s.Len())
	}

	if err := s.FinalizeSites(); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := s.NeighborHopping(-1); err != nil {
		t.Fatalf("%+v", err)
	}
	sys, err := s.Finalize()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	h := mat.M([][]complex128{
		{0.5, -1},
		{-1, 0},
	})
	for i := range 2 {
		for j := range 2 {
			if sys.Hamiltonian.At(i, j) != h.CDense().At(i, j) {
				t.Fatalf("%d %d %v, expected %v", i, j, sys.Hamiltonian.At(i, j), h.CDense().At(i, j))
			}
		}
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when adding sites after FinalizeSites")
		}
	}()
	s.Set(Tag{2, 0, 0, 0}, 0)
}

func TestFinalizeErrors(t *testing.T) {
	t.Parallel()
	s := NewSample(Square(1))
	if err := s.FinalizeSites(); err == nil {
		t.Fatalf("expected error for empty sample")
	}

	s.Set(Tag{0, 0, 0, 0}, 0)
	if err := s.NeighborHopping(-1); err == nil {
		t.Fatalf("expected error for hopping before FinalizeSites")
	}
	if _, err := s.Finalize(); err == nil {
		t.Fatalf("expected error for Finalize before FinalizeSites")
	}
}
