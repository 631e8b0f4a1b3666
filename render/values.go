package render

import (
	"fmt"

	"github.com/notargets/meshview/utils"
)

// Field evaluates a scalar at native barycentric coordinates lam of element
// or facet nr
type Field func(nr int, lam []float64) (float64, error)

// Vertices packs every mesh point as xyz float32
func Vertices(src Source) []float32 {
	nv := src.GetNumVertices()
	out := make([]float32, 0, 3*nv)
	for v := 0; v < nv; v++ {
		X := toFloat32(src.GetPoint(v))
		out = append(out, X[:]...)
	}
	return out
}

// Coefficients narrows per-element basis coefficients for upload
func Coefficients(vals []float64) []float32 {
	out := make([]float32, len(vals))
	for i, v := range vals {
		out[i] = float32(v)
	}
	return out
}

// SampleField evaluates field on the lattice of resolution order*cfg.Resolution
// of every element, or of every boundary facet when boundary is set. Values are
// packed per element in lattice rank order; the lattice weights are canonical
// barycentric coordinates, matching the primitives from Tessellate.
func SampleField(src Source, cfg Config, order int, boundary bool, field Field) ([]float32, error) {
	dim, err := checkSource(src, cfg)
	if err != nil {
		return nil, err
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: order %d", ErrInvalidResolution, order)
	}
	var (
		N       = src.GetNumElements()
		refDim  = dim
		ids     = func(n int) []int { return src.GetElement(n).Vertices }
		checker = func(n int) error {
			el := src.GetElement(n)
			return checkSimplex(el.Type, len(el.Vertices), dim, el.Nr)
		}
	)
	if boundary {
		N, refDim = src.GetNumFacets(), dim-1
		ids = func(n int) []int { return src.GetFacet(n).Vertices }
		checker = func(n int) error {
			fc := src.GetFacet(n)
			return checkSimplex(fc.Type, len(fc.Vertices), dim-1, fc.Nr)
		}
	}
	lat, err := NewLattice(refDim, order*cfg.Resolution)
	if err != nil {
		return nil, err
	}
	var (
		np   = lat.NumPoints()
		out  = make([]float32, N*np)
		pm   = cfg.partition(N)
		bary = make([][]float64, np)
	)
	for p := range bary {
		bary[p] = lat.Barycentric(p)
	}
	utils.Logger().Debug("sampling field", "items", N, "boundary", boundary, "pointsPerItem", np)
	// Each item owns its slice of out
	err = pm.Run(func(bn, nMin, nMax int) error {
		for n := nMin; n < nMax; n++ {
			if err := checker(n); err != nil {
				return err
			}
			co := NewCanonicalOrder(ids(n))
			for p := 0; p < np; p++ {
				v, err := field(n, co.Native(bary[p]))
				if err != nil {
					return err
				}
				out[n*np+p] = float32(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
