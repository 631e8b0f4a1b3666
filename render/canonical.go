package render

import (
	"sort"
)

// CanonicalOrder sorts an element's global vertex identifiers ascending.
// Elements sharing a face agree on the relative order of its vertices, so
// barycentric coordinates assigned in canonical order match across the face.
type CanonicalOrder struct {
	Sorted []int // Sorted[c] is the native slot of the c-th smallest identifier
	Rank   []int // Rank[slot] is the canonical position of a native slot
}

// NewCanonicalOrder derives the permutation from the identifiers alone.
// Identifiers are unique, so no tie-break is needed.
func NewCanonicalOrder(ids []int) CanonicalOrder {
	co := CanonicalOrder{
		Sorted: make([]int, len(ids)),
		Rank:   make([]int, len(ids)),
	}
	for slot := range ids {
		co.Sorted[slot] = slot
	}
	sort.Slice(co.Sorted, func(a, b int) bool {
		return ids[co.Sorted[a]] < ids[co.Sorted[b]]
	})
	for c, slot := range co.Sorted {
		co.Rank[slot] = c
	}
	return co
}

// Vertices returns ids in canonical order
func (co CanonicalOrder) Vertices(ids []int) []int {
	out := make([]int, len(co.Sorted))
	for c, slot := range co.Sorted {
		out[c] = ids[slot]
	}
	return out
}

// Native converts barycentric coordinates given in canonical order to the
// element's native order: λ[Sorted[c]] = w[c]
func (co CanonicalOrder) Native(w []float64) []float64 {
	lam := make([]float64, len(w))
	for c, slot := range co.Sorted {
		lam[slot] = w[c]
	}
	return lam
}
