package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/meshview/utils"
)

// ElementGroup is a physical group read from the mesh file
type ElementGroup struct {
	Dimension  int
	Tag        int
	Name       string
	MaterialID int
	Elements   []int
}

// BoundaryElement is a lower dimensional element read from the mesh file that
// tags part of the boundary
type BoundaryElement struct {
	ElementType utils.ElementType
	Nodes       []int // Node array indices
	Tag         int   // Physical tag
}

// Element is the render-facing view of one volume element
type Element struct {
	Nr       int
	Type     utils.ElementType
	Vertices []int // Corner vertex indices in native order
	Index    int   // Material index (physical tag)
	Curved   bool
}

// Dim returns the reference dimension of the element
func (e Element) Dim() int { return e.Type.GetDimension() }

// Facet is a boundary face (3D) or edge (2D). Vertices are ordered so the
// right-hand normal points out of the owning element.
type Facet struct {
	Nr        int
	Type      utils.ElementType
	Vertices  []int // Corner vertex indices
	Nodes     []int // All nodes, corners first
	Index     int   // Boundary index (physical tag, 0 when untagged)
	Curved    bool
	Element   int // Owning element
	LocalFace int
}

// Mesh represents an unstructured simplex mesh with its connectivity
type Mesh struct {
	// Geometry
	Vertices [][]float64 // Vertex coordinates [nvertices][3]

	// Element data, boundary elements excluded
	EtoV         [][]int             // Element to node connectivity, corner nodes first
	ElementTypes []utils.ElementType // Element type for each element
	ElementTags  [][]int             // Tags for each element, physical tag first
	Curved       []bool              // Element has non-affine geometry

	// File ID maps
	NodeIDMap    map[int]int // File node ID -> array index
	ElementIDMap map[int]int // File element ID -> array index

	ElementGroups    map[int]*ElementGroup
	BoundaryElements map[string][]BoundaryElement
	BoundaryTags     map[int]string

	// Connectivity (built by BuildConnectivity)
	EToE   [][]int // Element to element [nelems][nfaces_per_elem], -1 on the boundary
	EToF   [][]int // Neighbor's local face index, -1 on the boundary
	Facets []Facet

	FormatVersion string
	NumElements   int
	NumVertices   int

	dim      int
	pending  []pendingElement
	finished bool
}

type pendingElement struct {
	id    int
	etype utils.ElementType
	tags  []int
	nodes []int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		NodeIDMap:        make(map[int]int),
		ElementIDMap:     make(map[int]int),
		ElementGroups:    make(map[int]*ElementGroup),
		BoundaryElements: make(map[string][]BoundaryElement),
		BoundaryTags:     make(map[int]string),
	}
}

// AddNode appends a node under its file ID
func (m *Mesh) AddNode(nodeID int, coords []float64) {
	xyz := make([]float64, 3)
	copy(xyz, coords)
	idx := len(m.Vertices)
	m.Vertices = append(m.Vertices, xyz)
	m.NodeIDMap[nodeID] = idx
	m.NumVertices = len(m.Vertices)
}

// GetNodeIndex converts a file node ID to an array index
func (m *Mesh) GetNodeIndex(nodeID int) (int, bool) {
	idx, ok := m.NodeIDMap[nodeID]
	return idx, ok
}

// AddElement queues an element of any dimension using file node IDs. Whether
// it is a volume or a boundary element is decided by BuildConnectivity, once
// the mesh dimension is known.
func (m *Mesh) AddElement(elemID int, etype utils.ElementType, tags []int, nodeIDs []int) error {
	nodes := make([]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idx, ok := m.NodeIDMap[id]
		if !ok {
			return fmt.Errorf("element %d references unknown node %d", elemID, id)
		}
		nodes[i] = idx
	}
	m.AddElementByIndex(elemID, etype, tags, nodes)
	return nil
}

// AddElementByIndex is AddElement for callers that already hold node array
// indices
func (m *Mesh) AddElementByIndex(elemID int, etype utils.ElementType, tags []int, nodes []int) {
	m.pending = append(m.pending, pendingElement{
		id:    elemID,
		etype: etype,
		tags:  append([]int(nil), tags...),
		nodes: append([]int(nil), nodes...),
	})
	if d := etype.GetDimension(); d > m.dim {
		m.dim = d
	}
	m.finished = false
}

// AddBoundaryElement records a tagged boundary entity under its group name
func (m *Mesh) AddBoundaryElement(name string, belem BoundaryElement) {
	m.BoundaryElements[name] = append(m.BoundaryElements[name], belem)
	if _, ok := m.BoundaryTags[belem.Tag]; !ok {
		m.BoundaryTags[belem.Tag] = name
	}
}

// BuildConnectivity sorts the queued elements into volume and boundary
// elements, then builds face connectivity and the boundary facets.
func (m *Mesh) BuildConnectivity() {
	m.classify()
	m.buildFaceConnectivity()
	m.buildFacets()
	m.finished = true
}

func (m *Mesh) classify() {
	var (
		log  = utils.Logger()
		skip = make(map[utils.ElementType]int)
	)
	for _, pe := range m.pending {
		d := pe.etype.GetDimension()
		switch {
		case d == m.dim:
			idx := len(m.EtoV)
			m.EtoV = append(m.EtoV, pe.nodes)
			m.ElementTypes = append(m.ElementTypes, pe.etype)
			if len(pe.tags) == 0 {
				pe.tags = []int{0}
			}
			m.ElementTags = append(m.ElementTags, pe.tags)
			m.ElementIDMap[pe.id] = idx
			if g, ok := m.ElementGroups[pe.tags[0]]; ok {
				g.Elements = append(g.Elements, idx)
			}
		case d == m.dim-1 && pe.etype.IsSimplex():
			var tag int
			if len(pe.tags) > 0 {
				tag = pe.tags[0]
			}
			name := fmt.Sprintf("boundary_%d", tag)
			if g, ok := m.ElementGroups[tag]; ok {
				name = g.Name
			}
			m.AddBoundaryElement(name, BoundaryElement{
				ElementType: pe.etype,
				Nodes:       pe.nodes,
				Tag:         tag,
			})
		default:
			skip[pe.etype]++
		}
	}
	for et, n := range skip {
		log.Debug("skipped lower dimensional elements", "type", et.String(), "count", n)
	}
	m.pending = nil
	m.NumElements = len(m.EtoV)
	m.NumVertices = len(m.Vertices)
	m.Curved = make([]bool, m.NumElements)
	for k := range m.EtoV {
		m.Curved[k] = m.isCurved(m.ElementTypes[k], m.EtoV[k])
	}
}

// isCurved reports whether any mid-edge node of a quadratic element is off the
// straight edge between its corners.
func (m *Mesh) isCurved(et utils.ElementType, nodes []int) bool {
	if et.GeometricOrder() < 2 || len(nodes) < et.GetNumNodes() {
		return false
	}
	nc := et.GetNumCorners()
	for n, e := range et.EdgeNodes() {
		var (
			a, b = m.Vertices[nodes[e[0]]], m.Vertices[nodes[e[1]]]
			mid  = m.Vertices[nodes[nc+n]]
			h2   float64
			d2   float64
		)
		for i := 0; i < 3; i++ {
			h2 += (b[i] - a[i]) * (b[i] - a[i])
			c := 0.5 * (a[i] + b[i])
			d2 += (mid[i] - c) * (mid[i] - c)
		}
		if d2 > curvedTolerance*curvedTolerance*h2 {
			return true
		}
	}
	return false
}

const curvedTolerance = 1.e-8

// Dimension returns the mesh dimension (the reference dimension of its
// volume elements)
func (m *Mesh) Dimension() int { return m.dim }

// GetNumElements returns the number of volume elements
func (m *Mesh) GetNumElements() int { return m.NumElements }

// GetNumVertices returns the number of mesh nodes, mid-edge nodes included
func (m *Mesh) GetNumVertices() int { return m.NumVertices }

// GetNumFacets returns the number of boundary facets
func (m *Mesh) GetNumFacets() int { return len(m.Facets) }

// GetElement returns the render view of element k
func (m *Mesh) GetElement(k int) Element {
	et := m.ElementTypes[k]
	return Element{
		Nr:       k,
		Type:     et,
		Vertices: m.EtoV[k][:et.GetNumCorners()],
		Index:    m.ElementTags[k][0],
		Curved:   m.Curved[k],
	}
}

// GetFacet returns boundary facet f
func (m *Mesh) GetFacet(f int) Facet { return m.Facets[f] }

// GetPoint returns the coordinates of vertex v
func (m *Mesh) GetPoint(v int) [3]float64 {
	p := m.Vertices[v]
	return [3]float64{p[0], p[1], p[2]}
}

// ElementMap returns the reference to world map of element k
func (m *Mesh) ElementMap(k int) ReferenceMap {
	return m.newTransformation(m.ElementTypes[k], m.EtoV[k], m.Curved[k])
}

// FacetMap returns the reference to world map of boundary facet f
func (m *Mesh) FacetMap(f int) ReferenceMap {
	fc := m.Facets[f]
	return m.newTransformation(fc.Type, fc.Nodes, fc.Curved)
}

func (m *Mesh) newTransformation(et utils.ElementType, nodes []int, curved bool) *Transformation {
	if !curved {
		// Straight-sided quadratic elements map exactly with their corners
		et = et.Linear()
		nodes = nodes[:et.GetNumNodes()]
	}
	tr := &Transformation{
		Type:  et,
		Nodes: make([][3]float64, len(nodes)),
	}
	for i, n := range nodes {
		tr.Nodes[i] = m.GetPoint(n)
	}
	return tr
}

// BoundingBox returns the componentwise min and max of all vertices
func (m *Mesh) BoundingBox() (min, max [3]float64) {
	for i := 0; i < 3; i++ {
		min[i], max[i] = math.MaxFloat64, -math.MaxFloat64
	}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v[i])
			max[i] = math.Max(max[i], v[i])
		}
	}
	return
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Dimension: %d\n", m.dim)
	fmt.Printf("  Vertices: %d\n", m.NumVertices)
	fmt.Printf("  Elements: %d\n", m.NumElements)
	bMin, bMax := m.BoundingBox()
	fmt.Printf("  Bounding box: [%g, %g, %g] - [%g, %g, %g]\n",
		bMin[0], bMin[1], bMin[2], bMax[0], bMax[1], bMax[2])

	typeCounts := make(map[utils.ElementType]int)
	var nCurved int
	for k, t := range m.ElementTypes {
		typeCounts[t]++
		if m.Curved[k] {
			nCurved++
		}
	}
	types := make([]utils.ElementType, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	fmt.Printf("  Element types:\n")
	for _, t := range types {
		fmt.Printf("    %s: %d\n", t, typeCounts[t])
	}
	fmt.Printf("  Curved elements: %d\n", nCurved)

	var nCurvedFacets int
	for _, f := range m.Facets {
		if f.Curved {
			nCurvedFacets++
		}
	}
	fmt.Printf("  Boundary facets: %d (%d curved)\n", len(m.Facets), nCurvedFacets)
	tags := make([]int, 0, len(m.BoundaryTags))
	for tag := range m.BoundaryTags {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	for _, tag := range tags {
		fmt.Printf("    BC[%d] = %s\n", tag, m.BoundaryTags[tag])
	}
}
