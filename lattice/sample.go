package lattice

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	plmat "github.com/tcm/plasmon/mat"
)

// Tag identifies a site by unit cell (x, y), layer z and orbital.
type Tag [4]int

func (t Tag) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", t[0], t[1], t[2], t[3])
}

func tagOrder(a, b Tag) int {
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Sample is a tight-binding system under construction.
type Sample struct {
	Lattice *Lattice

	// size is the sheet size in unit cells, used to wrap periodic boundaries.
	size [2]int
	pbc  bool

	onsite map[Tag]float64

	// Set by FinalizeSites.
	tags  []Tag
	index map[Tag]int

	hoppings *plmat.COO
}

// System is a finalized sample.
// Row i of the Hamiltonian corresponds to Coordinates[i] and Tags[i].
type System struct {
	Hamiltonian *mat.CDense
	Coordinates []r3.Vec
	Tags        []Tag

	// Hoppings holds the off-diagonal part of the Hamiltonian.
	Hoppings *plmat.COO
}

func NewSample(lat *Lattice) *Sample {
	return &Sample{Lattice: lat, onsite: make(map[Tag]float64)}
}

// SquareSheet returns a w x h sheet of the square lattice with lattice constant a.
func SquareSheet(w, h int, pbc bool, a float64) *Sample {
	return sheet(Square(a), w, h, pbc)
}

// HoneycombSheet returns a w x h sheet of the honeycomb lattice with lattice constant a.
func HoneycombSheet(w, h int, pbc bool, a float64) *Sample {
	return sheet(Honeycomb(a), w, h, pbc)
}

func sheet(lat *Lattice, w, h int, pbc bool) *Sample {
	s := NewSample(lat)
	s.size = [2]int{w, h}
	s.pbc = pbc
	for x := range w {
		for y := range h {
			for o := range lat.Orbitals {
				s.Set(Tag{x, y, 0, o}, 0)
			}
		}
	}
	return s
}

// Set adds the site t with the given onsite potential, or updates its potential.
func (s *Sample) Set(t Tag, onsite float64) {
	s.mustBuilding()
	if t[3] < 0 || t[3] >= len(s.Lattice.Orbitals) {
		panic(fmt.Sprintf("orbital %d of %s out of %d", t[3], t, len(s.Lattice.Orbitals)))
	}
	s.onsite[t] = onsite
}

func (s *Sample) Delete(t Tag) {
	s.mustBuilding()
	delete(s.onsite, t)
}

func (s *Sample) Has(t Tag) bool {
	_, ok := s.onsite[t]
	return ok
}

func (s *Sample) Len() int { return len(s.onsite) }

// Sites iterates over the tags of the sample in no particular order.
func (s *Sample) Sites() func(yield func(Tag) bool) {
	return maps.Keys(s.onsite)
}

func (s *Sample) mustBuilding() {
	if s.tags != nil {
		panic("sample sites are already finalized")
	}
}

// FinalizeSites fixes the set of sites and their order.
func (s *Sample) FinalizeSites() error {
	if s.tags != nil {
		return errors.Errorf("sites already finalized")
	}
	if len(s.onsite) == 0 {
		return errors.Errorf("empty sample")
	}

	s.tags = slices.SortedFunc(maps.Keys(s.onsite), tagOrder)
	s.index = make(map[Tag]int, len(s.tags))
	for i, t := range s.tags {
		s.index[t] = i
	}
	return nil
}

// NeighborHopping sets the hopping amplitude between all nearest neighbours to t.
// With periodic boundaries, bonds that leave the sheet re-enter on the opposite side.
func (s *Sample) NeighborHopping(t float64) error {
	if s.tags == nil {
		return errors.Errorf("sites not finalized")
	}

	s.hoppings = plmat.COOZeros(len(s.tags), len(s.tags))
	for i, tag := range s.tags {
		for _, nb := range s.Lattice.neighbors[tag[3]] {
			other := Tag{tag[0] + nb.dx, tag[1] + nb.dy, tag[2], nb.to}
			if s.pbc {
				other[0] = wrap(other[0], s.size[0])
				other[1] = wrap(other[1], s.size[1])
			}
			j, ok := s.index[other]
			if !ok {
				continue
			}
			s.hoppings.Append(i, j, complex(t, 0))
		}
	}
	s.hoppings.Compact()
	return nil
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Finalize builds the Hamiltonian and coordinates.
func (s *Sample) Finalize() (*System, error) {
	if s.tags == nil {
		return nil, errors.Errorf("sites not finalized")
	}
	n := len(s.tags)

	h := plmat.COOZeros(n, n)
	if s.hoppings != nil {
		h.Data = append(h.Data, s.hoppings.Data...)
	}
	for i, t := range s.tags {
		h.Append(i, i, complex(s.onsite[t], 0))
	}
	h.Compact()

	sys := &System{
		Hamiltonian: h.CDense(),
		Coordinates: make([]r3.Vec, 0, n),
		Tags:        slices.Clone(s.tags),
		Hoppings:    s.hoppings,
	}
	if sys.Hoppings == nil {
		sys.Hoppings = plmat.COOZeros(n, n)
	}
	for _, t := range s.tags {
		sys.Coordinates = append(sys.Coordinates, s.Lattice.Position(t))
	}
	return sys, nil
}
