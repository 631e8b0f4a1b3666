package render

// VolumeElements is the per element table a viewer uses to draw element
// outlines. Each row holds the corner vertices in canonical order, the
// material index and the curved index: -1 for straight elements, otherwise
// 0,1,2,... in element order.
type VolumeElements struct {
	Dim       int
	Stride    int // Dim+3 entries per element
	NumCurved int
	Table     []int32
}

// Row returns the table entries of element k
func (ve *VolumeElements) Row(k int) []int32 {
	return ve.Table[k*ve.Stride : (k+1)*ve.Stride]
}

// BuildVolumeElements collects the element table of src
func BuildVolumeElements(src Source) (*VolumeElements, error) {
	dim, err := checkDimension(src)
	if err != nil {
		return nil, err
	}
	var (
		K  = src.GetNumElements()
		ve = &VolumeElements{Dim: dim, Stride: dim + 3}
	)
	ve.Table = make([]int32, 0, K*ve.Stride)
	for k := 0; k < K; k++ {
		el := src.GetElement(k)
		if err = checkSimplex(el.Type, len(el.Vertices), dim, el.Nr); err != nil {
			return nil, err
		}
		for _, v := range NewCanonicalOrder(el.Vertices).Vertices(el.Vertices) {
			ve.Table = append(ve.Table, int32(v))
		}
		curved := int32(-1)
		if el.Curved {
			curved = int32(ve.NumCurved)
			ve.NumCurved++
		}
		ve.Table = append(ve.Table, int32(el.Index), curved)
	}
	return ve, nil
}
