package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementType_Catalogue(t *testing.T) {
	tests := []struct {
		et                     ElementType
		dim, nodes, corners, p int
		simplex                bool
	}{
		{Line, 1, 2, 2, 1, true},
		{Line3, 1, 3, 2, 2, true},
		{Triangle, 2, 3, 3, 1, true},
		{Triangle6, 2, 6, 3, 2, true},
		{Tet, 3, 4, 4, 1, true},
		{Tet10, 3, 10, 4, 2, true},
		{Quad, 2, 4, 4, 1, false},
		{Hex, 3, 8, 8, 1, false},
	}
	for _, tc := range tests {
		t.Run(tc.et.String(), func(t *testing.T) {
			assert.Equal(t, tc.dim, tc.et.GetDimension())
			assert.Equal(t, tc.nodes, tc.et.GetNumNodes())
			assert.Equal(t, tc.corners, tc.et.GetNumCorners())
			assert.Equal(t, tc.p, tc.et.GeometricOrder())
			assert.Equal(t, tc.simplex, tc.et.IsSimplex())
			if tc.p == 2 {
				assert.Len(t, tc.et.EdgeNodes(), tc.nodes-tc.corners)
			}
		})
	}
	assert.Equal(t, "Invalid", ElementType(99).String())
	assert.Equal(t, Tet10, Tet.Quadratic())
	assert.Equal(t, Triangle, Triangle6.Linear())
}

func TestGetFaceNodes(t *testing.T) {
	// Tet10 with node numbers equal to 100+local index
	nodes := make([]int, 10)
	for i := range nodes {
		nodes[i] = 100 + i
	}
	// Face {1,2,3}: edges (1,2)->node 5, (2,3)->node 8, (3,1)->node 9
	assert.Equal(t, []int{101, 102, 103, 105, 108, 109},
		GetFaceNodes(Tet10, nodes, []int{1, 2, 3}))
	// Face {0,2,1}: edges (0,2)->6, (2,1)->5, (1,0)->4
	assert.Equal(t, []int{100, 102, 101, 106, 105, 104},
		GetFaceNodes(Tet10, nodes, []int{0, 2, 1}))
	// Linear elements only return corners
	assert.Equal(t, []int{7, 9}, GetFaceNodes(Triangle, []int{5, 7, 9}, []int{1, 2}))
	// Triangle6 edge (2,0) has mid node 5
	assert.Equal(t, []int{12, 10, 15},
		GetFaceNodes(Triangle6, []int{10, 11, 12, 13, 14, 15}, []int{2, 0}))

	faces := GetElementFaces(Tet, []int{7, 2, 9, 4})
	assert.Equal(t, [][]int{{7, 9, 2}, {7, 2, 4}, {7, 4, 9}, {2, 9, 4}}, faces)
}
