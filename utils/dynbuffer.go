package utils

// DynBuffer is an append-only buffer that is presized from an estimate and
// grows when the estimate is exceeded.
type DynBuffer[T any] struct {
	cells []T
}

func NewDynBuffer[T any](capacity int) *DynBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &DynBuffer[T]{cells: make([]T, 0, capacity)}
}

func (db *DynBuffer[T]) Add(vals ...T) {
	db.cells = append(db.cells, vals...)
}

func (db *DynBuffer[T]) Cells() []T { return db.cells }

func (db *DynBuffer[T]) Len() int { return len(db.cells) }

// Concat joins the buffers in order into a single slice.
func Concat[T any](bufs []*DynBuffer[T]) []T {
	var total int
	for _, b := range bufs {
		if b != nil {
			total += b.Len()
		}
	}
	out := make([]T, 0, total)
	for _, b := range bufs {
		if b != nil {
			out = append(out, b.Cells()...)
		}
	}
	return out
}
