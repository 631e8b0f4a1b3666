package basis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/meshview/utils"
)

// ErrUnsupported is returned for element types without a simplex basis and
// for negative orders
var ErrUnsupported = errors.New("basis: unsupported element or order")

// Family selects the polynomial basis of a Set
type Family uint8

const (
	// Bernstein polynomials p!/α! λ^α in graded descending exponent order.
	// Order 1 gives the barycentric coordinates λ0..λd.
	Bernstein Family = iota
	// Dubiner is the orthogonal collapsed-coordinate basis built from scaled
	// Legendre and Jacobi polynomials
	Dubiner
)

func (f Family) String() string {
	switch f {
	case Bernstein:
		return "bernstein"
	case Dubiner:
		return "dubiner"
	}
	return fmt.Sprintf("Family(%d)", f)
}

// ParseFamily is the inverse of Family.String, case insensitive
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bernstein", "":
		return Bernstein, nil
	case "dubiner":
		return Dubiner, nil
	}
	return 0, fmt.Errorf("unknown basis family %q", s)
}

// Set evaluates one polynomial family over values of type T
type Set[T any] struct {
	Family Family
}

// NDof returns the number of basis functions of the given order on the
// element's reference simplex, or 0 when unsupported
func (s Set[T]) NDof(et utils.ElementType, order int) int {
	d, err := simplexDim(et, order)
	if err != nil {
		return 0
	}
	return binomial(order+d, d)
}

// Evaluate returns the basis functions of the given order at the reference
// point pt, which has one coordinate per reference dimension
func (s Set[T]) Evaluate(r Ring[T], et utils.ElementType, order int, pt []T) ([]T, error) {
	d, err := simplexDim(et, order)
	if err != nil {
		return nil, err
	}
	if len(pt) != d {
		return nil, fmt.Errorf("%s reference point needs %d coordinates, have %d", et, d, len(pt))
	}
	lam := Barycentric(r, pt)
	switch s.Family {
	case Bernstein:
		return bernstein(r, lam, order), nil
	case Dubiner:
		return dubiner(r, lam, order), nil
	}
	return nil, fmt.Errorf("%w: family %s", ErrUnsupported, s.Family)
}

func simplexDim(et utils.ElementType, order int) (int, error) {
	if order < 0 {
		return 0, fmt.Errorf("%w: order %d", ErrUnsupported, order)
	}
	if !et.IsSimplex() || et.GetDimension() < 1 {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, et)
	}
	return et.GetDimension(), nil
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	b := 1
	for i := 1; i <= k; i++ {
		b = b * (n - k + i) / i
	}
	return b
}
