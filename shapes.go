package plasmon

import (
	"github.com/tcm/plasmon/lattice"
)

const (
	onsitePotential = 0
)

// triangleZigzag places a triangle with zigzag edges on the honeycomb lattice.
// Row 0 holds only orbital 1 sites away from the corners, row width+1 only orbital 0.
func triangleZigzag(width int, a float64) *lattice.Sample {
	s := lattice.NewSample(lattice.Honeycomb(a))
	for y := range width + 2 {
		for x := range width + 2 - y {
			switch y {
			case 0:
				if x != 0 && x != width+1 {
					s.Set(lattice.Tag{x, y, 0, 1}, onsitePotential)
				}
			case width + 1:
				s.Set(lattice.Tag{x, y, 0, 0}, onsitePotential)
			default:
				s.Set(lattice.Tag{x, y, 0, 0}, onsitePotential)
				s.Set(lattice.Tag{x, y, 0, 1}, onsitePotential)
			}
		}
	}
	return s
}

// triangleArmchair places a triangle with armchair edges on the honeycomb lattice.
// The row extents depend on the parity of width; the first column of every row but the middle one
// carries a single orbital.
func triangleArmchair(width int, a float64) *lattice.Sample {
	s := lattice.NewSample(lattice.Honeycomb(a))
	for y := -width; y <= width; y++ {
		absY := abs(y)
		// ceil(1.5 width)
		xMax := (3*width + 1) / 2
		switch width % 2 {
		case 0:
			xMax -= absY / 2
		default:
			xMax -= (absY + 1) / 2
		}
		xMin := 0
		if y != 0 {
			xMin = absY - 1
		}
		if y < 0 {
			xMin -= y
			xMax -= y
		}

		for x := xMin; x < xMax; x++ {
			switch {
			case y != 0 && x == xMin && y < 0:
				s.Set(lattice.Tag{x, y, 0, 1}, onsitePotential)
			case y != 0 && x == xMin:
				s.Set(lattice.Tag{x, y, 0, 0}, onsitePotential)
			default:
				s.Set(lattice.Tag{x, y, 0, 0}, onsitePotential)
				s.Set(lattice.Tag{x, y, 0, 1}, onsitePotential)
			}
		}
	}
	return s
}

// sierpinskiCarpet cuts carpet holes out of a square sheet of width start·3^depth.
// Iteration i removes the middle ninth of every block of width W/3^i.
func sierpinskiCarpet(start, depth int, a float64) *lattice.Sample {
	w := start * pow3(depth)
	s := lattice.SquareSheet(w, w, false, a)

	holes := make([]lattice.Tag, 0)
	for i := range depth {
		scale := w / pow3(i)
		third := scale / 3
		inHole := func(t lattice.Tag) bool {
			x, y := t[0]%scale, t[1]%scale
			return x >= third && x < 2*third && y >= third && y < 2*third
		}
		for t := range s.Sites() {
			if inHole(t) {
				holes = append(holes, t)
			}
		}
	}
	for _, t := range holes {
		s.Delete(t)
	}
	return s
}

func pow3(n int) int {
	p := 1
	for range n {
		p *= 3
	}
	return p
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
