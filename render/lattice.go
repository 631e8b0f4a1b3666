package render

import (
	"fmt"
)

// Lattice enumerates the integer barycentric points (w0..wd) summing to the
// resolution r, ranked by nested loops with w0 outermost. In that order the
// rank of a neighbor is a closed form offset from the current rank, so no
// adjacency is stored.
type Lattice struct {
	Dim        int
	Resolution int
	Points     [][4]int // Weights per rank, entries past Dim are zero
}

// NumLatticePoints returns C(r+d, d)
func NumLatticePoints(dim, r int) int {
	n := 1
	for i := 1; i <= dim; i++ {
		n = n * (r + i) / i
	}
	return n
}

// NewLattice builds the lattice of a simplex of dimension 1, 2 or 3
func NewLattice(dim, r int) (*Lattice, error) {
	if r < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, r)
	}
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDimension, dim)
	}
	l := &Lattice{
		Dim:        dim,
		Resolution: r,
		Points:     make([][4]int, 0, NumLatticePoints(dim, r)),
	}
	switch dim {
	case 1:
		for i := 0; i <= r; i++ {
			l.Points = append(l.Points, [4]int{i, r - i})
		}
	case 2:
		for i := 0; i <= r; i++ {
			for j := 0; j <= r-i; j++ {
				l.Points = append(l.Points, [4]int{i, j, r - i - j})
			}
		}
	case 3:
		for i := 0; i <= r; i++ {
			for j := 0; j <= r-i; j++ {
				for k := 0; k <= r-i-j; k++ {
					l.Points = append(l.Points, [4]int{i, j, k, r - i - j - k})
				}
			}
		}
	}
	return l, nil
}

// NumPoints returns the number of lattice points
func (l *Lattice) NumPoints() int { return len(l.Points) }

// Weights returns the d+1 integer weights of the point at rank p
func (l *Lattice) Weights(p int) []int {
	return l.Points[p][:l.Dim+1]
}

// Barycentric returns the weights of the point at rank p divided by r
func (l *Lattice) Barycentric(p int) []float64 {
	var (
		w   = l.Weights(p)
		lam = make([]float64, len(w))
		rr  = float64(l.Resolution)
	)
	for c, wc := range w {
		lam[c] = float64(wc) / rr
	}
	return lam
}

// neighbors holds the ranks reached from point (i,j,k) by incrementing one
// or more of the leading weights (the last weight absorbs the change). Only
// combinations whose weight sum stays within r are meaningful.
type neighbors struct {
	k, j, i         int
	kj, ij, ki, kij int
}

// neighbors3 returns the neighbor ranks of rank p = (i,j,k) for s = r+1
func neighbors3(p, i, j, s int) (n neighbors) {
	n.k = p + 1
	n.j = p + (s - i - j)
	n.i = p + (s-i)*(s+1-i)/2 - j
	n.kj = n.j + 1
	n.ij = n.i + (s - (i + 1) - j)
	n.ki = n.i + 1
	n.kij = n.ij + 1
	return
}

// neighbors2 returns the neighbor ranks of rank p = (i,j) for s = r+1
func neighbors2(p, i, s int) (n neighbors) {
	n.j = p + 1
	n.i = p + (s - i)
	n.ij = n.i + 1
	return
}

// SubSimplices tiles the simplex into r^d congruent sub-simplices, each a
// tuple of d+1 ranks. Every tuple has the same orientation in lattice
// coordinates.
func (l *Lattice) SubSimplices() [][]int {
	var (
		r    = l.Resolution
		s    = r + 1
		subs = make([][]int, 0, pow(r, l.Dim))
	)
	for p, w := range l.Points {
		i, j, k := w[0], w[1], w[2]
		switch l.Dim {
		case 1:
			if i < r {
				subs = append(subs, []int{p, p + 1})
			}
		case 2:
			if i+j >= r {
				continue
			}
			n := neighbors2(p, i, s)
			subs = append(subs, []int{p, n.j, n.i})
			if i+j+1 < r {
				subs = append(subs, []int{n.j, n.ij, n.i})
			}
		case 3:
			if i+j+k >= r {
				continue
			}
			n := neighbors3(p, i, j, s)
			subs = append(subs, []int{p, n.k, n.j, n.i})
			if i+j+k+1 < r {
				subs = append(subs,
					[]int{n.k, n.kj, n.j, n.i},
					[]int{n.k, n.ki, n.kj, n.i},
					[]int{n.j, n.i, n.kj, n.ij},
					[]int{n.i, n.kj, n.ij, n.ki},
				)
			}
			if i+j+k+2 < r {
				subs = append(subs, []int{n.kj, n.ij, n.ki, n.kij})
			}
		}
	}
	return subs
}

func pow(r, d int) int {
	n := 1
	for i := 0; i < d; i++ {
		n *= r
	}
	return n
}
