// Package lattice builds tight-binding samples on two dimensional Bravais lattices.
//
// A sample is a set of sites, each identified by a Tag holding its unit cell, layer and orbital.
// Once the sites are fixed, nearest neighbour hoppings are derived from the lattice geometry and
// the sample is finalized into a dense Hamiltonian and the matching list of site coordinates.
package lattice

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// distTol is the relative tolerance when comparing bond lengths.
	distTol = 1e-6
	// searchCells is how many cells in each direction are searched for neighbours.
	searchCells = 2
)

// Lattice is a two dimensional Bravais lattice with a basis of orbitals.
type Lattice struct {
	Vectors  [2]r3.Vec
	Orbitals []r3.Vec

	// neighbors[s] are the nearest neighbours of orbital s.
	neighbors [][]neighbor
}

type neighbor struct {
	dx, dy int
	to     int
}

// Honeycomb returns the graphene lattice with lattice constant a.
// The carbon-carbon distance is a/√3 and orbital 1 sits directly above orbital 0,
// so that an orbital 1 site bonds to orbital 0 in its own cell and in cells (0, 1) and (-1, 1).
func Honeycomb(a float64) *Lattice {
	lat := &Lattice{
		Vectors: [2]r3.Vec{
			{X: a},
			{X: a / 2, Y: math.Sqrt(3) / 2 * a},
		},
		Orbitals: []r3.Vec{
			{},
			{Y: a / math.Sqrt(3)},
		},
	}
	lat.neighbors = nearestNeighbors(lat)
	return lat
}

// Square returns the square lattice with lattice constant a and a single orbital.
func Square(a float64) *Lattice {
	lat := &Lattice{
		Vectors: [2]r3.Vec{
			{X: a},
			{Y: a},
		},
		Orbitals: []r3.Vec{{}},
	}
	lat.neighbors = nearestNeighbors(lat)
	return lat
}

// Position returns the cartesian position of a site.
func (lat *Lattice) Position(t Tag) r3.Vec {
	p := r3.Add(r3.Scale(float64(t[0]), lat.Vectors[0]), r3.Scale(float64(t[1]), lat.Vectors[1]))
	return r3.Add(p, lat.Orbitals[t[3]])
}

func nearestNeighbors(lat *Lattice) [][]neighbor {
	dist := func(from int, nb neighbor) float64 {
		to := lat.Position(Tag{nb.dx, nb.dy, 0, nb.to})
		return r3.Norm(r3.Sub(to, lat.Orbitals[from]))
	}
	candidates := func(from int) func(yield func(neighbor) bool) {
		return func(yield func(neighbor) bool) {
			for dx := -searchCells; dx <= searchCells; dx++ {
				for dy := -searchCells; dy <= searchCells; dy++ {
					for to := range lat.Orbitals {
						if dx == 0 && dy == 0 && to == from {
							continue
						}
						if !yield(neighbor{dx: dx, dy: dy, to: to}) {
							return
						}
					}
				}
			}
		}
	}

	shortest := math.Inf(1)
	for from := range lat.Orbitals {
		for nb := range candidates(from) {
			shortest = min(shortest, dist(from, nb))
		}
	}

	neighbors := make([][]neighbor, len(lat.Orbitals))
	for from := range lat.Orbitals {
		for nb := range candidates(from) {
			if math.Abs(dist(from, nb)-shortest) < distTol*shortest {
				neighbors[from] = append(neighbors[from], nb)
			}
		}
	}
	return neighbors
}
