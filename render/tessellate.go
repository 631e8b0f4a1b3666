package render

import (
	"encoding/binary"
	"io"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/utils"
)

// Primitives are flat sub-simplices ready for upload. Every primitive has
// Dim+1 vertices and every per-vertex array is packed in primitive order.
// ElementCorners relates a sub-primitive to its element: the vertex in slot
// c of a primitive carries the element's c-th corner in canonical order.
type Primitives struct {
	Dim            int
	NumPrimitives  int
	MaxIndex       int       // Largest material index
	Coordinates    []float32 // World xyz, 3 per vertex
	Barycentric    []float32 // Canonical barycentric coordinates, Dim+1 per vertex
	ElementCorners []float32 // World xyz of the element corner in the vertex's primitive slot
	ElementNumber  []int32   // Owning element per vertex
	ElementIndex   []int32   // Material index per vertex
	Min, Max       [3]float32
}

// VerticesPerPrimitive returns Dim+1
func (p *Primitives) VerticesPerPrimitive() int { return p.Dim + 1 }

// NumVertices returns the number of packed vertices
func (p *Primitives) NumVertices() int { return len(p.ElementNumber) }

type primitiveBuffer struct {
	coords, bary, corners *utils.DynBuffer[float32]
	nr, index             *utils.DynBuffer[int32]
}

func newPrimitiveBuffer(dim, nvert int) *primitiveBuffer {
	return &primitiveBuffer{
		coords:  utils.NewDynBuffer[float32](3 * nvert),
		bary:    utils.NewDynBuffer[float32]((dim + 1) * nvert),
		corners: utils.NewDynBuffer[float32](3 * nvert),
		nr:      utils.NewDynBuffer[int32](nvert),
		index:   utils.NewDynBuffer[int32](nvert),
	}
}

func (pb *primitiveBuffer) addVertex(X [3]float32, lam []float32, corner [3]float32, el mesh.Element) {
	pb.coords.Add(X[:]...)
	pb.bary.Add(lam...)
	pb.corners.Add(corner[:]...)
	pb.nr.Add(int32(el.Nr))
	pb.index.Add(int32(el.Index))
}

// addFlat emits the element itself, vertices in canonical order with unit
// barycentric coordinates
func (pb *primitiveBuffer) addFlat(src Source, el mesh.Element, co CanonicalOrder) {
	n := len(el.Vertices)
	for c, v := range co.Vertices(el.Vertices) {
		lam := make([]float32, n)
		lam[c] = 1
		X := toFloat32(src.GetPoint(v))
		pb.addVertex(X, lam, X, el)
	}
}

// addCurved maps every lattice point through the element map, treating the
// lattice weights as canonical barycentric coordinates, then emits the
// sub-simplices
func (pb *primitiveBuffer) addCurved(trafo mesh.ReferenceMap, el mesh.Element, co CanonicalOrder,
	lat *Lattice, subs [][]int) error {
	var (
		world   = make([][3]float32, lat.NumPoints())
		bary    = make([][]float32, lat.NumPoints())
		corners = make([][3]float32, lat.Dim+1)
	)
	for c := range corners {
		unit := make([]float64, lat.Dim+1)
		unit[c] = 1
		X, err := trafo.Map(co.Native(unit))
		if err != nil {
			return err
		}
		corners[c] = toFloat32(X)
	}
	for p := range lat.Points {
		w := lat.Barycentric(p)
		X, err := trafo.Map(co.Native(w))
		if err != nil {
			return err
		}
		world[p] = toFloat32(X)
		bary[p] = make([]float32, len(w))
		for c := range w {
			bary[p][c] = float32(w[c])
		}
	}
	for _, sub := range subs {
		for i, p := range sub {
			pb.addVertex(world[p], bary[p], corners[i], el)
		}
	}
	return nil
}

// Tessellate converts every element to render primitives. Straight-sided
// elements become one primitive each; curved elements are subdivided on the
// lattice of cfg.Resolution into Resolution^Dim primitives. Errors from the
// element maps are returned as produced.
func Tessellate(src Source, cfg Config) (*Primitives, error) {
	dim, err := checkSource(src, cfg)
	if err != nil {
		return nil, err
	}
	lat, err := NewLattice(dim, cfg.Resolution)
	if err != nil {
		return nil, err
	}
	var (
		log  = utils.Logger()
		subs = lat.SubSimplices()
		K    = src.GetNumElements()
		pm   = cfg.partition(K)
		bufs = make([]*primitiveBuffer, pm.ParallelDegree)
	)
	log.Debug("tessellating", "elements", K, "dim", dim, "resolution", cfg.Resolution,
		"latticePoints", lat.NumPoints(), "subSimplices", len(subs), "partitions", pm.ParallelDegree)

	err = pm.Run(func(bn, kMin, kMax int) error {
		// Presized for straight elements, curved ones grow the buffer
		pb := newPrimitiveBuffer(dim, pm.GetBucketDimension(bn)*(dim+1))
		bufs[bn] = pb
		for k := kMin; k < kMax; k++ {
			el := src.GetElement(k)
			if err := checkSimplex(el.Type, len(el.Vertices), dim, el.Nr); err != nil {
				return err
			}
			co := NewCanonicalOrder(el.Vertices)
			if !el.Curved {
				pb.addFlat(src, el, co)
				continue
			}
			if err := pb.addCurved(src.ElementMap(k), el, co, lat, subs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p := &Primitives{Dim: dim}
	coords := make([]*utils.DynBuffer[float32], 0, len(bufs))
	bary := make([]*utils.DynBuffer[float32], 0, len(bufs))
	corners := make([]*utils.DynBuffer[float32], 0, len(bufs))
	nr := make([]*utils.DynBuffer[int32], 0, len(bufs))
	index := make([]*utils.DynBuffer[int32], 0, len(bufs))
	for _, pb := range bufs {
		if pb == nil {
			continue
		}
		coords = append(coords, pb.coords)
		bary = append(bary, pb.bary)
		corners = append(corners, pb.corners)
		nr = append(nr, pb.nr)
		index = append(index, pb.index)
	}
	p.Coordinates = utils.Concat(coords)
	p.Barycentric = utils.Concat(bary)
	p.ElementCorners = utils.Concat(corners)
	p.ElementNumber = utils.Concat(nr)
	p.ElementIndex = utils.Concat(index)
	p.NumPrimitives = len(p.ElementNumber) / (dim + 1)
	p.Min, p.Max = bounds(p.Coordinates)
	for _, idx := range p.ElementIndex {
		p.MaxIndex = max(p.MaxIndex, int(idx))
	}
	log.Info("tessellated", "elements", K, "primitives", p.NumPrimitives)
	return p, nil
}

// WriteBinary dumps the primitives little endian: dimension, primitive count,
// then each array preceded by its length
func (p *Primitives) WriteBinary(w io.Writer) (err error) {
	put := func(v any) {
		if err == nil {
			err = binary.Write(w, binary.LittleEndian, v)
		}
	}
	put(int64(p.Dim))
	put(int64(p.NumPrimitives))
	put(int64(len(p.Coordinates)))
	put(p.Coordinates)
	put(int64(len(p.Barycentric)))
	put(p.Barycentric)
	put(int64(len(p.ElementNumber)))
	put(p.ElementNumber)
	put(int64(len(p.ElementIndex)))
	put(p.ElementIndex)
	put(int64(len(p.ElementCorners)))
	put(p.ElementCorners)
	put(p.Min)
	put(p.Max)
	return
}
