package render

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/utils"
)

// bentTriangle is a Triangle6 whose edge 0-1 bows down to (0.5, -0.1)
func bentTriangle(t *testing.T) *mesh.Mesh {
	msh := mesh.NewMesh()
	for i, p := range [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0.5, -0.1, 0}, {0.5, 0.5, 0}, {0, 0.5, 0},
	} {
		msh.AddNode(i+1, p)
	}
	require.NoError(t, msh.AddElement(1, utils.Triangle6, []int{3}, []int{1, 2, 3, 4, 5, 6}))
	msh.BuildConnectivity()
	return msh
}

func TestBuildSurface_2D(t *testing.T) {
	s, err := BuildSurface(bentTriangle(t), Config{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Dim)
	assert.Equal(t, EdgeBlockSize, s.BlockSize)
	assert.Equal(t, 1, s.NumTriangles)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, s.Coordinates)
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, s.Barycentric)
	assert.Equal(t, []int32{0, 0, 0}, s.Number)
	assert.Equal(t, []int32{3, 3, 3}, s.Index)
	assert.Equal(t, 3, s.MaxIndex)

	// Only the bowed edge is curved
	assert.Equal(t, []int32{0, -1, -1}, s.CurvedIndex)
	require.Len(t, s.CurvedData, EdgeBlockSize)
	l := math.Sqrt(1.16)
	want := []float64{
		-0.4 / l, -1 / l, 0, // normal at vertex 0
		0.4 / l, -1 / l, 0,  // normal at vertex 1
		0.5, -0.1, 0,        // edge midpoint
	}
	for i, w := range want {
		assert.InDelta(t, w, float64(s.CurvedData[i]), 1.e-6, "entry %d", i)
	}
}

func TestBuildSurface_3D(t *testing.T) {
	msh := curvedTetPair(t)
	s, err := BuildSurface(msh, Config{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Dim)
	assert.Equal(t, TriangleBlockSize, s.BlockSize)
	assert.Equal(t, 6, s.NumTriangles)
	require.Len(t, s.Coordinates, 6*9)
	require.Len(t, s.Number, 6*3)

	// Facets touching a bowed boundary edge are curved, compacted in facet order
	assert.Equal(t, []int32{0, 1, -1, 2, 3, -1}, s.CurvedIndex)
	require.Len(t, s.CurvedData, 4*TriangleBlockSize)

	for f, ci := range s.CurvedIndex {
		if ci < 0 {
			continue
		}
		block := s.CurvedData[int(ci)*TriangleBlockSize:]
		for c := 0; c < 3; c++ {
			n := block[3*c : 3*c+3]
			l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
			assert.InDelta(t, 1., l, 1.e-6, "facet %d corner %d", f, c)
		}
	}
	// First facet is the bottom of the first element, vertices {0, 1, 2}
	bottom := s.CurvedData[:TriangleBlockSize]
	for c := 0; c < 3; c++ {
		assert.Less(t, bottom[3*c+2], float32(-0.5), "bottom normal %d points out", c)
	}
	for i, w := range []float32{
		0.5, -0.05, 0,   // edge 0-1
		0.5, 0.5, -0.05, // edge 1-2
		0, 0.5, 0,       // edge 2-0
	} {
		assert.InDelta(t, w, bottom[9+i], 1.e-6)
	}

	serial, err := BuildSurface(msh, Config{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, serial, s)
}

func TestBuildSurface_FlatMesh(t *testing.T) {
	fs := scrambledTet(false)
	fs.facets = []mesh.Facet{
		{Nr: 0, Type: utils.Triangle, Vertices: []int{7, 9, 2}, Index: 4},
		{Nr: 1, Type: utils.Triangle, Vertices: []int{7, 2, 4}, Index: 6},
	}
	s, err := BuildSurface(fs, Config{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumTriangles)
	assert.Equal(t, []int32{-1, -1}, s.CurvedIndex)
	assert.Empty(t, s.CurvedData)
	assert.Equal(t, 6, s.MaxIndex)
	assert.Equal(t, []int32{0, 0, 0, 1, 1, 1}, s.Number)
	// Canonical vertex order within each triangle: 2, 7, 9 then 2, 4, 7
	assert.Equal(t, []float32{
		2, 0, 0, 0, 0, 0, 0, 1, 0,
		2, 0, 0, 0, 0, 3, 0, 0, 0,
	}, s.Coordinates)
	assert.Equal(t, [3]float32{0, 0, 0}, s.Min)
	assert.Equal(t, [3]float32{2, 1, 3}, s.Max)
}

type failingMap struct{ err error }

func (fm failingMap) Map([]float64) ([3]float64, error)    { return [3]float64{}, fm.err }
func (fm failingMap) Normal([]float64) ([3]float64, error) { return [3]float64{}, fm.err }

func TestBuildSurface_Errors(t *testing.T) {
	_, err := BuildSurface(&fakeSource{dim: 4}, Config{})
	assert.ErrorIs(t, err, ErrUnsupportedDimension)

	fs := scrambledTet(false)
	fs.facets = []mesh.Facet{{Type: utils.Quad, Vertices: []int{7, 2, 9, 4}}}
	_, err = BuildSurface(fs, Config{})
	assert.ErrorIs(t, err, ErrUnsupportedElement)

	boom := errors.New("boom")
	fs.facets = []mesh.Facet{{Type: utils.Triangle6, Vertices: []int{7, 2, 9}, Curved: true}}
	fs.fmaps = []mesh.ReferenceMap{failingMap{boom}}
	_, err = BuildSurface(fs, Config{})
	assert.True(t, err == boom, "got %v", err)
}

func TestVerticesAndCoefficients(t *testing.T) {
	msh := curvedTetPair(t)
	xyz := Vertices(msh)
	require.Len(t, xyz, 3*14)
	assert.Equal(t, []float32{1, 1, 1}, xyz[12:15])
	assert.Equal(t, []float32{1.05, 0.5, 0.5}, xyz[33:36])

	assert.Equal(t, []float32{0.5, -2, 0}, Coefficients([]float64{0.5, -2, 0}))
	assert.Empty(t, Coefficients(nil))
}

func TestSampleField(t *testing.T) {
	fs := scrambledTet(false)
	ids := fs.elements[0].Vertices
	// Weights the identifiers by the native coordinates it receives
	field := func(nr int, lam []float64) (float64, error) {
		var v float64
		for slot, l := range lam {
			v += l * float64(ids[slot])
		}
		return v, nil
	}
	const order = 2
	vals, err := SampleField(fs, Config{Resolution: 2}, order, false, field)
	require.NoError(t, err)
	lat, err := NewLattice(3, order*2)
	require.NoError(t, err)
	require.Len(t, vals, lat.NumPoints())
	canonical := []int{2, 4, 7, 9}
	for p := range lat.Points {
		var want float64
		for c, b := range lat.Barycentric(p) {
			want += b * float64(canonical[c])
		}
		assert.InDelta(t, want, float64(vals[p]), 1.e-5, "lattice point %d", p)
	}
}

func TestSampleField_Boundary(t *testing.T) {
	msh := curvedTetPair(t)
	field := func(nr int, lam []float64) (float64, error) {
		assert.Len(t, lam, 3)
		return float64(nr), nil
	}
	vals, err := SampleField(msh, Config{Resolution: 1, Workers: 4}, 3, true, field)
	require.NoError(t, err)
	np := NumLatticePoints(2, 3)
	require.Len(t, vals, msh.GetNumFacets()*np)
	for f := 0; f < msh.GetNumFacets(); f++ {
		for p := 0; p < np; p++ {
			assert.Equal(t, float32(f), vals[f*np+p])
		}
	}
}

func TestSampleField_Errors(t *testing.T) {
	fs := scrambledTet(false)
	ok := func(int, []float64) (float64, error) { return 0, nil }
	_, err := SampleField(fs, Config{Resolution: 1}, 0, false, ok)
	assert.ErrorIs(t, err, ErrInvalidResolution)
	_, err = SampleField(fs, Config{Resolution: 0}, 1, false, ok)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	boom := errors.New("boom")
	_, err = SampleField(fs, Config{Resolution: 1}, 1, false,
		func(int, []float64) (float64, error) { return 0, boom })
	assert.True(t, err == boom, "got %v", err)
}
