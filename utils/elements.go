package utils

// ElementType represents the finite element shapes found in mesh files. Only
// the simplex families (Line, Triangle, Tet and their quadratic variants) carry
// geometry; the rest are recognized so readers can skip them.
type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	Line3 // 3-node line (quadratic)
	// 2D elements
	Triangle
	Quad
	Triangle6 // 6-node triangle (quadratic)
	// 3D elements
	Tet
	Hex
	Prism
	Pyramid
	Tet10 // 10-node tetrahedron (quadratic)
)

func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Line", "Line3",
		"Triangle", "Quad", "Triangle6",
		"Tet", "Hex", "Prism", "Pyramid", "Tet10",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the reference dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line, Line3:
		return 1
	case Triangle, Quad, Triangle6:
		return 2
	case Tet, Hex, Prism, Pyramid, Tet10:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes stored for the element
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line:
		return 2
	case Line3, Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Pyramid:
		return 5
	case Triangle6, Prism:
		return 6
	case Hex:
		return 8
	case Tet10:
		return 10
	default:
		return 0
	}
}

// IsSimplex reports whether the element is a line, triangle or tetrahedron of
// any geometric order.
func (e ElementType) IsSimplex() bool {
	switch e {
	case Line, Line3, Triangle, Triangle6, Tet, Tet10:
		return true
	}
	return false
}

// GeometricOrder is 2 for the quadratic variants and 1 otherwise.
func (e ElementType) GeometricOrder() int {
	switch e {
	case Line3, Triangle6, Tet10:
		return 2
	}
	return 1
}

// Linear returns the straight-sided element with the same corners.
func (e ElementType) Linear() ElementType {
	switch e {
	case Line3:
		return Line
	case Triangle6:
		return Triangle
	case Tet10:
		return Tet
	}
	return e
}

// Quadratic returns the second order variant of a simplex.
func (e ElementType) Quadratic() ElementType {
	switch e {
	case Line:
		return Line3
	case Triangle:
		return Triangle6
	case Tet:
		return Tet10
	}
	return e
}

// GetNumCorners returns the number of vertices of the straight-sided shape.
func (e ElementType) GetNumCorners() int {
	return e.Linear().GetNumNodes()
}

// EdgeNodes maps the mid-edge nodes of a quadratic simplex to the pair of
// corners they sit between, in Gmsh node order. Entry n describes node
// GetNumCorners()+n.
func (e ElementType) EdgeNodes() [][2]int {
	switch e {
	case Line3:
		return [][2]int{{0, 1}}
	case Triangle6:
		return [][2]int{{0, 1}, {1, 2}, {2, 0}}
	case Tet10:
		return [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 0}, {3, 2}, {3, 1}}
	}
	return nil
}

// FacetType returns the element type of the faces (3D) or edges (2D).
func (e ElementType) FacetType() ElementType {
	switch e {
	case Triangle:
		return Line
	case Triangle6:
		return Line3
	case Tet:
		return Triangle
	case Tet10:
		return Triangle6
	}
	return Unknown
}

// GetLocalFaces returns the local corner indices of each face, ordered so the
// right-hand normal points out of a positively oriented element.
func (e ElementType) GetLocalFaces() [][]int {
	switch e {
	case Triangle, Triangle6:
		return [][]int{{0, 1}, {1, 2}, {2, 0}}
	case Tet, Tet10:
		return [][]int{
			{0, 2, 1}, // Face 0
			{0, 1, 3}, // Face 1
			{0, 3, 2}, // Face 2
			{1, 2, 3}, // Face 3
		}
	}
	return nil
}

// GetElementFaces returns the faces of an element as global vertex lists
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	local := elemType.GetLocalFaces()
	faces := make([][]int, len(local))
	for f, lf := range local {
		faces[f] = make([]int, len(lf))
		for i, l := range lf {
			faces[f][i] = vertices[l]
		}
	}
	return faces
}

// GetFaceNodes returns all nodes, corners first then mid-edge nodes in the
// facet's own Gmsh order, of a face given by local corners.
func GetFaceNodes(elemType ElementType, nodes []int, localFace []int) []int {
	ft := elemType.FacetType()
	out := make([]int, 0, ft.GetNumNodes())
	for _, l := range localFace {
		out = append(out, nodes[l])
	}
	if elemType.GeometricOrder() == 1 {
		return out
	}
	var (
		edges = elemType.EdgeNodes()
		nc    = elemType.GetNumCorners()
	)
	for _, fe := range ft.EdgeNodes() {
		a, b := localFace[fe[0]], localFace[fe[1]]
		for n, ed := range edges {
			if (ed[0] == a && ed[1] == b) || (ed[0] == b && ed[1] == a) {
				out = append(out, nodes[nc+n])
				break
			}
		}
	}
	return out
}
