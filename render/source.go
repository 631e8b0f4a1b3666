package render

import (
	"errors"
	"fmt"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/utils"
)

var (
	// ErrUnsupportedDimension is returned for meshes that are neither 2D nor 3D
	ErrUnsupportedDimension = errors.New("render: unsupported mesh dimension")
	// ErrInvalidResolution is returned for a subdivision resolution below 1
	ErrInvalidResolution = errors.New("render: resolution must be at least 1")
	// ErrUnsupportedElement is returned for elements that are not simplices of
	// the mesh dimension
	ErrUnsupportedElement = errors.New("render: unsupported element")
)

// Source is the mesh and geometry a render call reads. Vertex identifiers in
// elements and facets index GetPoint. *mesh.Mesh implements it.
type Source interface {
	Dimension() int
	GetNumVertices() int
	GetPoint(v int) [3]float64
	GetNumElements() int
	GetElement(k int) mesh.Element
	ElementMap(k int) mesh.ReferenceMap
	GetNumFacets() int
	GetFacet(f int) mesh.Facet
	FacetMap(f int) mesh.ReferenceMap
}

// Config controls a render call
type Config struct {
	Resolution int // Lattice subdivision of curved elements, at least 1
	Workers    int // Parallel partitions, 0 picks one per CPU
}

func (cfg Config) partition(n int) *utils.PartitionMap {
	workers := cfg.Workers
	if workers < 1 {
		workers = utils.DefaultParallelDegree(n)
	}
	return utils.NewPartitionMap(workers, n)
}

// checkSource validates the resolution then the mesh dimension
func checkSource(src Source, cfg Config) (dim int, err error) {
	if cfg.Resolution < 1 {
		err = fmt.Errorf("%w: %d", ErrInvalidResolution, cfg.Resolution)
		return
	}
	return checkDimension(src)
}

func checkDimension(src Source) (dim int, err error) {
	dim = src.Dimension()
	if dim != 2 && dim != 3 {
		err = fmt.Errorf("%w: %d", ErrUnsupportedDimension, dim)
	}
	return
}

func checkSimplex(et utils.ElementType, nverts, dim, nr int) error {
	if !et.IsSimplex() || et.GetDimension() != dim || nverts != dim+1 {
		return fmt.Errorf("%w: %s with %d vertices at %d in a %dD mesh",
			ErrUnsupportedElement, et, nverts, nr, dim)
	}
	return nil
}

func toFloat32(X [3]float64) [3]float32 {
	return [3]float32{float32(X[0]), float32(X[1]), float32(X[2])}
}

// bounds returns the componentwise min and max over packed xyz triples
func bounds(xyz []float32) (min, max [3]float32) {
	if len(xyz) < 3 {
		return
	}
	copy(min[:], xyz[:3])
	copy(max[:], xyz[:3])
	for n := 3; n+2 < len(xyz); n += 3 {
		for i := 0; i < 3; i++ {
			v := xyz[n+i]
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	return
}
