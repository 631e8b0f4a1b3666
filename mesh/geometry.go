package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/meshview/utils"
)

// ErrDegenerateMap is returned when an element map has a vanishing Jacobian at
// the requested point
var ErrDegenerateMap = errors.New("mesh: degenerate element map")

// ReferenceMap maps native barycentric coordinates of an element or facet to
// world space
type ReferenceMap interface {
	Map(lam []float64) ([3]float64, error)
	Normal(lam []float64) ([3]float64, error)
}

// Transformation is the isoparametric Lagrange map of a linear or quadratic
// simplex. Nodes are in Gmsh order, corners first.
//
// Reference coordinates follow the barycentric convention λ_a = ξ_a for a < d
// and λ_d = 1 - Σξ, so ∂/∂ξ_m = ∂/∂λ_m - ∂/∂λ_d.
type Transformation struct {
	Type  utils.ElementType
	Nodes [][3]float64
}

const degenerateTolerance = 1.e-12

// Dim returns the reference dimension
func (tr *Transformation) Dim() int { return tr.Type.GetDimension() }

// shape returns the shape functions and their derivatives with respect to
// each barycentric coordinate
func (tr *Transformation) shape(lam []float64) (N []float64, dN [][]float64) {
	var (
		nn = tr.Type.GetNumNodes()
		nb = len(lam)
	)
	N = make([]float64, nn)
	dN = make([][]float64, nn)
	for i := range dN {
		dN[i] = make([]float64, nb)
	}
	if tr.Type.GeometricOrder() == 1 {
		for a := 0; a < nn; a++ {
			N[a] = lam[a]
			dN[a][a] = 1
		}
		return
	}
	nc := tr.Type.GetNumCorners()
	for a := 0; a < nc; a++ {
		N[a] = lam[a] * (2*lam[a] - 1)
		dN[a][a] = 4*lam[a] - 1
	}
	for n, e := range tr.Type.EdgeNodes() {
		a, b := e[0], e[1]
		N[nc+n] = 4 * lam[a] * lam[b]
		dN[nc+n][a] = 4 * lam[b]
		dN[nc+n][b] = 4 * lam[a]
	}
	return
}

func (tr *Transformation) checkArgs(lam []float64) error {
	if d := tr.Dim(); len(lam) != d+1 {
		return fmt.Errorf("%s map needs %d barycentric coordinates, have %d",
			tr.Type, d+1, len(lam))
	}
	if len(tr.Nodes) != tr.Type.GetNumNodes() {
		return fmt.Errorf("%s map has %d nodes, need %d",
			tr.Type, len(tr.Nodes), tr.Type.GetNumNodes())
	}
	return nil
}

// Jacobian returns the 3 x d matrix ∂X/∂ξ at lam
func (tr *Transformation) Jacobian(lam []float64) (*mat.Dense, error) {
	if err := tr.checkArgs(lam); err != nil {
		return nil, err
	}
	var (
		d     = tr.Dim()
		J     = mat.NewDense(3, d, nil)
		_, dN = tr.shape(lam)
	)
	for n, X := range tr.Nodes {
		for m := 0; m < d; m++ {
			dNdXi := dN[n][m] - dN[n][d]
			if dNdXi == 0 {
				continue
			}
			for i := 0; i < 3; i++ {
				J.Set(i, m, J.At(i, m)+dNdXi*X[i])
			}
		}
	}
	return J, nil
}

// measure returns the Jacobian determinant for volumes, the area element for
// surfaces and the length element for curves
func measure(J *mat.Dense) float64 {
	_, d := J.Dims()
	switch d {
	case 3:
		return math.Abs(mat.Det(J))
	case 2:
		c := cross(column(J, 0), column(J, 1))
		return norm(c)
	case 1:
		return norm(column(J, 0))
	}
	return 0
}

// scale is the characteristic measure used to judge degeneracy
func (tr *Transformation) scale() float64 {
	var (
		nc = tr.Type.GetNumCorners()
		h  float64
	)
	for a := 0; a < nc; a++ {
		for b := a + 1; b < nc; b++ {
			h = math.Max(h, norm(sub(tr.Nodes[b], tr.Nodes[a])))
		}
	}
	return math.Pow(h, float64(tr.Dim()))
}

// Map returns the world position of the native barycentric point lam
func (tr *Transformation) Map(lam []float64) (X [3]float64, err error) {
	var J *mat.Dense
	if J, err = tr.Jacobian(lam); err != nil {
		return
	}
	if measure(J) <= degenerateTolerance*tr.scale() {
		err = ErrDegenerateMap
		return
	}
	N, _ := tr.shape(lam)
	for n, Xn := range tr.Nodes {
		for i := 0; i < 3; i++ {
			X[i] += N[n] * Xn[i]
		}
	}
	return
}

// Normal returns the unit normal of a facet map at lam. Triangles use the
// right-hand rule on their vertex order. Lines lie in the xy plane and the
// normal points to the right of the direction from vertex 0 to vertex 1.
func (tr *Transformation) Normal(lam []float64) (n [3]float64, err error) {
	var J *mat.Dense
	if J, err = tr.Jacobian(lam); err != nil {
		return
	}
	switch tr.Dim() {
	case 2:
		n = cross(column(J, 0), column(J, 1))
	case 1:
		// ∂X/∂ξ runs from vertex 1 to vertex 0
		t := column(J, 0)
		n = [3]float64{-t[1], t[0], 0}
	default:
		err = fmt.Errorf("normal undefined for %s", tr.Type)
		return
	}
	l := norm(n)
	if l <= degenerateTolerance*tr.scale() {
		err = ErrDegenerateMap
		return
	}
	for i := range n {
		n[i] /= l
	}
	return
}

// Centroid returns the mapped barycenter
func (tr *Transformation) Centroid() ([3]float64, error) {
	d := tr.Dim()
	lam := make([]float64, d+1)
	for i := range lam {
		lam[i] = 1. / float64(d+1)
	}
	return tr.Map(lam)
}

func column(J *mat.Dense, m int) (c [3]float64) {
	for i := 0; i < 3; i++ {
		c[i] = J.At(i, m)
	}
	return
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func norm(a [3]float64) float64 {
	return math.Sqrt(dot(a, a))
}
