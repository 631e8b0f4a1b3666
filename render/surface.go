package render

import (
	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/utils"
)

const (
	// TriangleBlockSize is 3 corner normals and 3 edge midpoints
	TriangleBlockSize = 18
	// EdgeBlockSize is 2 corner normals and 1 edge midpoint
	EdgeBlockSize = 9
)

// Surface is the flat triangle set drawn for a mesh: the boundary facets of a
// 3D mesh or the elements of a 2D mesh. Curved boundary facets carry a sample
// block the renderer uses for a quadratic correction of the flat facet.
type Surface struct {
	Dim          int
	NumTriangles int
	MaxIndex     int       // Largest boundary (3D) or material (2D) index
	Coordinates  []float32 // World xyz, 3 vertices per triangle
	Barycentric  []float32 // Unit vectors in canonical order, 3 per vertex
	Number       []int32   // Facet (3D) or element (2D) number per vertex
	Index        []int32   // Boundary (3D) or material (2D) index per vertex
	CurvedIndex  []int32   // Per boundary facet, -1 when flat, else 0,1,2,...
	CurvedData   []float32 // BlockSize floats per curved facet, in curved index order
	BlockSize    int
	Min, Max     [3]float32
}

type surfaceBuffer struct {
	coords, bary *utils.DynBuffer[float32]
	nr, index    *utils.DynBuffer[int32]
}

type curvedBuffer struct {
	facets []int
	data   *utils.DynBuffer[float32]
}

// BuildSurface collects the surface triangles and samples every curved
// boundary facet
func BuildSurface(src Source, cfg Config) (*Surface, error) {
	dim, err := checkDimension(src)
	if err != nil {
		return nil, err
	}
	s := &Surface{Dim: dim, BlockSize: TriangleBlockSize}
	if dim == 2 {
		s.BlockSize = EdgeBlockSize
	}
	if err = s.collectTriangles(src, cfg); err != nil {
		return nil, err
	}
	if err = s.sampleCurved(src, cfg); err != nil {
		return nil, err
	}
	utils.Logger().Info("surface built", "triangles", s.NumTriangles,
		"facets", len(s.CurvedIndex), "curved", len(s.CurvedData)/s.BlockSize)
	return s, nil
}

// surfaceTriangle returns the corners, number and index of surface triangle n
func surfaceTriangle(src Source, dim, n int) (verts []int, nr, index int, err error) {
	if dim == 3 {
		fc := src.GetFacet(n)
		err = checkSimplex(fc.Type, len(fc.Vertices), 2, fc.Nr)
		return fc.Vertices, fc.Nr, fc.Index, err
	}
	el := src.GetElement(n)
	err = checkSimplex(el.Type, len(el.Vertices), 2, el.Nr)
	return el.Vertices, el.Nr, el.Index, err
}

func (s *Surface) collectTriangles(src Source, cfg Config) error {
	N := src.GetNumFacets()
	if s.Dim == 2 {
		N = src.GetNumElements()
	}
	var (
		pm   = cfg.partition(N)
		bufs = make([]*surfaceBuffer, pm.ParallelDegree)
	)
	err := pm.Run(func(bn, nMin, nMax int) error {
		sb := &surfaceBuffer{
			coords: utils.NewDynBuffer[float32](9 * (nMax - nMin)),
			bary:   utils.NewDynBuffer[float32](9 * (nMax - nMin)),
			nr:     utils.NewDynBuffer[int32](3 * (nMax - nMin)),
			index:  utils.NewDynBuffer[int32](3 * (nMax - nMin)),
		}
		bufs[bn] = sb
		for n := nMin; n < nMax; n++ {
			verts, nr, index, err := surfaceTriangle(src, s.Dim, n)
			if err != nil {
				return err
			}
			co := NewCanonicalOrder(verts)
			for c, v := range co.Vertices(verts) {
				X := toFloat32(src.GetPoint(v))
				lam := [3]float32{}
				lam[c] = 1
				sb.coords.Add(X[:]...)
				sb.bary.Add(lam[:]...)
				sb.nr.Add(int32(nr))
				sb.index.Add(int32(index))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	var (
		coords, bary []*utils.DynBuffer[float32]
		nr, index    []*utils.DynBuffer[int32]
	)
	for _, sb := range bufs {
		if sb == nil {
			continue
		}
		coords, bary = append(coords, sb.coords), append(bary, sb.bary)
		nr, index = append(nr, sb.nr), append(index, sb.index)
	}
	s.Coordinates = utils.Concat(coords)
	s.Barycentric = utils.Concat(bary)
	s.Number = utils.Concat(nr)
	s.Index = utils.Concat(index)
	s.NumTriangles = len(s.Number) / 3
	s.Min, s.Max = bounds(s.Coordinates)
	for _, idx := range s.Index {
		s.MaxIndex = max(s.MaxIndex, int(idx))
	}
	return nil
}

// sampleFacet appends the outward unit normal at each corner, in canonical
// order, then the mapped midpoint of each canonical edge (0,1), (1,2), (2,0)
func sampleFacet(trafo mesh.ReferenceMap, fc mesh.Facet, data *utils.DynBuffer[float32]) error {
	var (
		n  = len(fc.Vertices)
		co = NewCanonicalOrder(fc.Vertices)
	)
	for c := 0; c < n; c++ {
		w := make([]float64, n)
		w[c] = 1
		N, err := trafo.Normal(co.Native(w))
		if err != nil {
			return err
		}
		v := toFloat32(N)
		data.Add(v[:]...)
	}
	edges := [][2]int{{0, 1}, {1, 2}, {2, 0}}
	if n == 2 {
		edges = edges[:1]
	}
	for _, e := range edges {
		w := make([]float64, n)
		w[e[0]], w[e[1]] = 0.5, 0.5
		X, err := trafo.Map(co.Native(w))
		if err != nil {
			return err
		}
		v := toFloat32(X)
		data.Add(v[:]...)
	}
	return nil
}

func (s *Surface) sampleCurved(src Source, cfg Config) error {
	var (
		F    = src.GetNumFacets()
		pm   = cfg.partition(F)
		bufs = make([]*curvedBuffer, pm.ParallelDegree)
	)
	err := pm.Run(func(bn, fMin, fMax int) error {
		// Presized as if a tenth of the facets were curved
		cb := &curvedBuffer{data: utils.NewDynBuffer[float32](s.BlockSize * ((fMax-fMin)/10 + 1))}
		bufs[bn] = cb
		for f := fMin; f < fMax; f++ {
			fc := src.GetFacet(f)
			if !fc.Curved {
				continue
			}
			if err := checkSimplex(fc.Type, len(fc.Vertices), s.Dim-1, fc.Nr); err != nil {
				return err
			}
			if err := sampleFacet(src.FacetMap(f), fc, cb.data); err != nil {
				return err
			}
			cb.facets = append(cb.facets, f)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.CurvedIndex = make([]int32, F)
	for f := range s.CurvedIndex {
		s.CurvedIndex[f] = -1
	}
	var (
		data []*utils.DynBuffer[float32]
		next int32
	)
	for _, cb := range bufs {
		if cb == nil {
			continue
		}
		for _, f := range cb.facets {
			s.CurvedIndex[f] = next
			next++
		}
		data = append(data, cb.data)
	}
	s.CurvedData = utils.Concat(data)
	return nil
}
