package mesh

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/notargets/meshview/utils"
)

// buildFaceConnectivity matches faces through the face to vertex incidence
// matrix: two faces are shared when FToV·FToVᵀ counts all of their corners in
// common.
func (m *Mesh) buildFaceConnectivity() {
	var (
		K          = m.NumElements
		faceOffset = make([]int, K+1)
	)
	m.EToE = make([][]int, K)
	m.EToF = make([][]int, K)
	for k := 0; k < K; k++ {
		nf := len(m.ElementTypes[k].GetLocalFaces())
		faceOffset[k+1] = faceOffset[k] + nf
		m.EToE[k] = make([]int, nf)
		m.EToF[k] = make([]int, nf)
		for f := 0; f < nf; f++ {
			m.EToE[k][f], m.EToF[k][f] = -1, -1
		}
	}
	TotalFaces := faceOffset[K]
	if TotalFaces == 0 || m.NumVertices == 0 {
		return
	}
	var (
		faceElement = make([]int, TotalFaces)
		faceLocal   = make([]int, TotalFaces)
		faceCorners = make([]int, TotalFaces)
	)
	SpFToV_Tmp := sparse.NewDOK(TotalFaces, m.NumVertices)
	for k := 0; k < K; k++ {
		et := m.ElementTypes[k]
		for f, verts := range utils.GetElementFaces(et, m.EtoV[k]) {
			sk := faceOffset[k] + f
			faceElement[sk], faceLocal[sk], faceCorners[sk] = k, f, len(verts)
			for _, v := range verts {
				SpFToV_Tmp.Set(sk, v, 1)
			}
		}
	}
	SpFToF := sparse.NewCSR(TotalFaces, TotalFaces, nil, nil, nil)
	SpFToV := SpFToV_Tmp.ToCSR()
	SpFToF.Mul(SpFToV, SpFToV.T())
	SpFToF.DoNonZero(func(i, j int, v float64) {
		if i == j || int(v) != faceCorners[i] {
			return
		}
		k1, f1 := faceElement[i], faceLocal[i]
		m.EToE[k1][f1] = faceElement[j]
		m.EToF[k1][f1] = faceLocal[j]
	})
}

// orientation returns the sign of the element volume (3D) or area (2D)
// computed from its corners
func (m *Mesh) orientation(k int) float64 {
	var (
		nodes = m.EtoV[k]
		x0    = m.GetPoint(nodes[0])
		a     = sub(m.GetPoint(nodes[1]), x0)
		b     = sub(m.GetPoint(nodes[2]), x0)
	)
	switch m.ElementTypes[k].GetDimension() {
	case 3:
		return dot(cross(a, b), sub(m.GetPoint(nodes[3]), x0))
	case 2:
		return cross(a, b)[2]
	}
	return 0
}

func faceKey(verts []int) string {
	sorted := append([]int(nil), verts...)
	sort.Ints(sorted)
	return fmt.Sprintf("%v", sorted)
}

// buildFacets collects every face without a neighbor as a boundary facet,
// oriented outward, and tags it from the matching boundary element
func (m *Mesh) buildFacets() {
	var (
		log   = utils.Logger()
		tags  = make(map[string]int)
		found = make(map[string]bool)
	)
	for _, belems := range m.BoundaryElements {
		for _, be := range belems {
			nc := be.ElementType.GetNumCorners()
			if len(be.Nodes) < nc {
				continue
			}
			key := faceKey(be.Nodes[:nc])
			tags[key] = be.Tag
			found[key] = false
		}
	}
	m.Facets = m.Facets[:0]
	for k := 0; k < m.NumElements; k++ {
		et := m.ElementTypes[k]
		if !et.IsSimplex() || et.GetDimension() < 2 {
			continue
		}
		flip := m.orientation(k) < 0
		for f, lf := range et.GetLocalFaces() {
			if m.EToE[k][f] != -1 {
				continue
			}
			local := append([]int(nil), lf...)
			if flip {
				n := len(local)
				local[n-2], local[n-1] = local[n-1], local[n-2]
			}
			var (
				ft    = et.FacetType()
				nodes = utils.GetFaceNodes(et, m.EtoV[k], local)
				nc    = ft.GetNumCorners()
				key   = faceKey(nodes[:nc])
			)
			if _, ok := found[key]; ok {
				found[key] = true
			}
			m.Facets = append(m.Facets, Facet{
				Nr:        len(m.Facets),
				Type:      ft,
				Vertices:  nodes[:nc],
				Nodes:     nodes,
				Index:     tags[key],
				Curved:    m.Curved[k] && m.isCurved(ft, nodes),
				Element:   k,
				LocalFace: f,
			})
		}
	}
	var unmatched int
	for _, ok := range found {
		if !ok {
			unmatched++
		}
	}
	if unmatched > 0 {
		log.Warn("boundary elements not on the mesh boundary", "count", unmatched)
	}
}
