package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/utils"
)

// fakeSource serves elements with hand picked vertex identifiers and maps
type fakeSource struct {
	dim      int
	points   [][3]float64
	elements []mesh.Element
	maps     []mesh.ReferenceMap
	facets   []mesh.Facet
	fmaps    []mesh.ReferenceMap
}

func (fs *fakeSource) Dimension() int                     { return fs.dim }
func (fs *fakeSource) GetNumVertices() int                { return len(fs.points) }
func (fs *fakeSource) GetPoint(v int) [3]float64          { return fs.points[v] }
func (fs *fakeSource) GetNumElements() int                { return len(fs.elements) }
func (fs *fakeSource) GetElement(k int) mesh.Element      { return fs.elements[k] }
func (fs *fakeSource) ElementMap(k int) mesh.ReferenceMap { return fs.maps[k] }
func (fs *fakeSource) GetNumFacets() int                  { return len(fs.facets) }
func (fs *fakeSource) GetFacet(f int) mesh.Facet          { return fs.facets[f] }
func (fs *fakeSource) FacetMap(f int) mesh.ReferenceMap   { return fs.fmaps[f] }

// linearMap builds the straight map through the points of verts, in native order
func (fs *fakeSource) linearMap(et utils.ElementType, verts []int) *mesh.Transformation {
	tr := &mesh.Transformation{Type: et}
	for _, v := range verts {
		tr.Nodes = append(tr.Nodes, fs.points[v])
	}
	return tr
}

// scrambledTet is a single tetrahedron whose vertex identifiers are not in
// ascending order
func scrambledTet(curved bool) *fakeSource {
	fs := &fakeSource{dim: 3, points: make([][3]float64, 10)}
	for v := range fs.points {
		fs.points[v] = [3]float64{float64(v), float64(2 * v), float64(3 * v)}
	}
	fs.points[7] = [3]float64{0, 0, 0}
	fs.points[2] = [3]float64{2, 0, 0}
	fs.points[9] = [3]float64{0, 1, 0}
	fs.points[4] = [3]float64{0, 0, 3}
	el := mesh.Element{Nr: 0, Type: utils.Tet, Vertices: []int{7, 2, 9, 4}, Index: 5, Curved: curved}
	fs.elements = []mesh.Element{el}
	fs.maps = []mesh.ReferenceMap{fs.linearMap(utils.Tet, el.Vertices)}
	return fs
}

func tetVolume(x []float32, v int) float64 {
	p := func(n int) [3]float64 {
		o := 3 * (v + n)
		return [3]float64{float64(x[o]), float64(x[o+1]), float64(x[o+2])}
	}
	a := p(0)
	d := func(n int) [3]float64 {
		b := p(n)
		return [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	}
	u, w, s := d(1), d(2), d(3)
	return (u[0]*(w[1]*s[2]-w[2]*s[1]) - u[1]*(w[0]*s[2]-w[2]*s[0]) +
		u[2]*(w[0]*s[1]-w[1]*s[0])) / 6
}

func TestTessellate_FlatCanonicalOrder(t *testing.T) {
	fs := scrambledTet(false)
	p, err := Tessellate(fs, Config{Resolution: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, p.NumPrimitives)
	assert.Equal(t, 4, p.VerticesPerPrimitive())
	assert.Equal(t, 4, p.NumVertices())
	// Points of ids 2, 4, 7, 9
	assert.Equal(t, []float32{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 1, 0}, p.Coordinates)
	assert.Equal(t, []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}, p.Barycentric)
	assert.Equal(t, p.Coordinates, p.ElementCorners)
	assert.Equal(t, []int32{0, 0, 0, 0}, p.ElementNumber)
	assert.Equal(t, []int32{5, 5, 5, 5}, p.ElementIndex)
	assert.Equal(t, 5, p.MaxIndex)
	assert.Equal(t, [3]float32{0, 0, 0}, p.Min)
	assert.Equal(t, [3]float32{2, 1, 3}, p.Max)
}

func TestTessellate_CurvedTiling(t *testing.T) {
	fs := scrambledTet(true)
	canonical := []int{2, 4, 7, 9}
	for r := 1; r <= 4; r++ {
		p, err := Tessellate(fs, Config{Resolution: r})
		require.NoError(t, err)
		require.Equal(t, r*r*r, p.NumPrimitives)
		require.Len(t, p.Barycentric, 4*p.NumVertices())

		var total float64
		sign := math.Signbit(tetVolume(p.Coordinates, 0))
		for n := 0; n < p.NumPrimitives; n++ {
			vol := tetVolume(p.Coordinates, 4*n)
			assert.Equal(t, sign, math.Signbit(vol), "primitive %d flips orientation", n)
			total += vol
		}
		assert.InDelta(t, 1., math.Abs(total), 1.e-5, "resolution %d", r)

		// On a straight map the world point is the canonical combination
		for v := 0; v < p.NumVertices(); v++ {
			var (
				X   [3]float64
				sum float64
			)
			for c, id := range canonical {
				b := float64(p.Barycentric[4*v+c])
				assert.GreaterOrEqual(t, b, 0.)
				assert.LessOrEqual(t, b, 1.)
				sum += b
				for i := 0; i < 3; i++ {
					X[i] += b * fs.points[id][i]
				}
			}
			assert.InDelta(t, 1., sum, 1.e-6)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, X[i], float64(p.Coordinates[3*v+i]), 1.e-5)
			}
			// Slot c of every primitive carries the c-th canonical corner
			corner := fs.points[canonical[v%4]]
			for i := 0; i < 3; i++ {
				assert.InDelta(t, corner[i], float64(p.ElementCorners[3*v+i]), 1.e-6)
			}
		}
	}
}

// curvedTetPair is two Tet10 elements sharing the face of nodes {2, 3, 4}.
// Mid-edge nodes on edges 1-2, 2-3 and 2-5 are displaced so both elements and
// the shared face are curved.
func curvedTetPair(t *testing.T) *mesh.Mesh {
	msh := mesh.NewMesh()
	coords := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1},
		{0.5, -0.05, 0}, {0.5, 0.5, -0.05}, {0, 0.5, 0}, {0, 0, 0.5},
		{0, 0.5, 0.5}, {0.5, 0, 0.5}, {1.05, 0.5, 0.5}, {0.5, 1, 0.5}, {0.5, 0.5, 1},
	}
	for n, X := range coords {
		msh.AddNode(n+1, X)
	}
	require.NoError(t, msh.AddElement(1, utils.Tet10, []int{20, 1},
		[]int{1, 2, 3, 4, 6, 7, 8, 9, 10, 11}))
	require.NoError(t, msh.AddElement(2, utils.Tet10, []int{20, 1},
		[]int{2, 4, 3, 5, 11, 10, 7, 12, 13, 14}))
	msh.BuildConnectivity()
	require.True(t, msh.Curved[0])
	require.True(t, msh.Curved[1])
	return msh
}

func TestTessellate_SharedFaceSeam(t *testing.T) {
	msh := curvedTetPair(t)
	const r = 4
	p, err := Tessellate(msh, Config{Resolution: r, Workers: 2})
	require.NoError(t, err)
	require.Equal(t, 2*r*r*r, p.NumPrimitives)

	type facePoint struct {
		X       [3]float32
		weights map[int]float32
	}
	var (
		shared = []int{1, 2, 3}
		faces  = [2]map[string]facePoint{{}, {}}
	)
	for v := 0; v < p.NumVertices(); v++ {
		k := int(p.ElementNumber[v])
		verts := NewCanonicalOrder(msh.GetElement(k).Vertices).Vertices(msh.GetElement(k).Vertices)
		weights := make(map[int]float32)
		for c, id := range verts {
			weights[id] = p.Barycentric[4*v+c]
		}
		onFace := true
		for id, w := range weights {
			if id != 1 && id != 2 && id != 3 && w != 0 {
				onFace = false
			}
		}
		if !onFace {
			continue
		}
		var key string
		for _, id := range shared {
			key += fmt.Sprintf("%d,", int(math.Round(float64(weights[id])*r)))
		}
		faces[k][key] = facePoint{
			X:       [3]float32{p.Coordinates[3*v], p.Coordinates[3*v+1], p.Coordinates[3*v+2]},
			weights: weights,
		}
	}
	require.Len(t, faces[0], NumLatticePoints(2, r))
	require.Len(t, faces[1], NumLatticePoints(2, r))
	for key, a := range faces[0] {
		b, ok := faces[1][key]
		require.True(t, ok, "lattice point %s missing from the second element", key)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, a.X[i], b.X[i], 1.e-6, "point %s", key)
		}
		for _, id := range shared {
			assert.InDelta(t, a.weights[id], b.weights[id], 1.e-7, "point %s vertex %d", key, id)
		}
	}
}

func TestTessellate_PartitionIndependent(t *testing.T) {
	msh := curvedTetPair(t)
	serial, err := Tessellate(msh, Config{Resolution: 3, Workers: 1})
	require.NoError(t, err)
	for _, workers := range []int{0, 2, 5} {
		parallel, err := Tessellate(msh, Config{Resolution: 3, Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers %d", workers)
	}
}

func TestTessellate_Errors(t *testing.T) {
	fs := scrambledTet(true)
	_, err := Tessellate(fs, Config{Resolution: 0})
	assert.ErrorIs(t, err, ErrInvalidResolution)

	line := &fakeSource{dim: 1}
	_, err = Tessellate(line, Config{Resolution: 2})
	assert.ErrorIs(t, err, ErrUnsupportedDimension)
	// Resolution is checked before dimension
	_, err = Tessellate(line, Config{Resolution: 0})
	assert.ErrorIs(t, err, ErrInvalidResolution)

	quad := &fakeSource{
		dim:      2,
		points:   [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		elements: []mesh.Element{{Type: utils.Quad, Vertices: []int{0, 1, 2, 3}}},
		maps:     []mesh.ReferenceMap{nil},
	}
	_, err = Tessellate(quad, Config{Resolution: 1})
	assert.ErrorIs(t, err, ErrUnsupportedElement)

	// A collapsed curved element reports the map error unchanged
	flat := scrambledTet(true)
	flat.points[4] = [3]float64{1, 1, 0}
	flat.maps[0] = flat.linearMap(utils.Tet, flat.elements[0].Vertices)
	_, err = Tessellate(flat, Config{Resolution: 2})
	assert.True(t, err == mesh.ErrDegenerateMap, "got %v", err)

	// Straight elements are not mapped, so the same element passes
	flat.elements[0].Curved = false
	_, err = Tessellate(flat, Config{Resolution: 2})
	assert.NoError(t, err)
}

func TestPrimitives_WriteBinary(t *testing.T) {
	p, err := Tessellate(scrambledTet(false), Config{Resolution: 1})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, p.WriteBinary(&buf))

	var hdr [3]int64
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &hdr))
	assert.Equal(t, [3]int64{3, 1, 12}, hdr)
	coords := make([]float32, hdr[2])
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, coords))
	assert.Equal(t, p.Coordinates, coords)
	// Barycentric, element number, index and corner arrays, then the bounds
	assert.Equal(t, 8+4*16+8+4*4+8+4*4+8+4*12+2*12, buf.Len())
}

func TestTessellate_CurvedElementCorners(t *testing.T) {
	msh := curvedTetPair(t)
	p, err := Tessellate(msh, Config{Resolution: 2, Workers: 2})
	require.NoError(t, err)
	require.Len(t, p.ElementCorners, 3*p.NumVertices())
	for v := 0; v < p.NumVertices(); v++ {
		el := msh.GetElement(int(p.ElementNumber[v]))
		// Quadratic maps reproduce the corner nodes exactly
		corner := msh.GetPoint(NewCanonicalOrder(el.Vertices).Vertices(el.Vertices)[v%4])
		for i := 0; i < 3; i++ {
			assert.InDelta(t, corner[i], float64(p.ElementCorners[3*v+i]), 1.e-6, "vertex %d", v)
		}
	}
}

func TestBuildVolumeElements(t *testing.T) {
	ve, err := BuildVolumeElements(curvedTetPair(t))
	require.NoError(t, err)
	assert.Equal(t, 3, ve.Dim)
	assert.Equal(t, 6, ve.Stride)
	assert.Equal(t, 2, ve.NumCurved)
	assert.Equal(t, []int32{
		0, 1, 2, 3, 20, 0,
		1, 2, 3, 4, 20, 1,
	}, ve.Table)
	assert.Equal(t, []int32{1, 2, 3, 4, 20, 1}, ve.Row(1))

	// Straight elements get no curved index
	ve, err = BuildVolumeElements(scrambledTet(false))
	require.NoError(t, err)
	assert.Equal(t, 0, ve.NumCurved)
	assert.Equal(t, []int32{2, 4, 7, 9, 5, -1}, ve.Table)

	_, err = BuildVolumeElements(&fakeSource{dim: 1})
	assert.ErrorIs(t, err, ErrUnsupportedDimension)
	quad := &fakeSource{
		dim:      2,
		points:   [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		elements: []mesh.Element{{Type: utils.Quad, Vertices: []int{0, 1, 2, 3}}},
	}
	_, err = BuildVolumeElements(quad)
	assert.ErrorIs(t, err, ErrUnsupportedElement)
}
