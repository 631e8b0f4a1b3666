package basis

// Ring is the arithmetic a basis needs: constants, sums, differences and
// products. There is no division, so the same evaluation code runs on float64
// and on symbolic expressions.
type Ring[T any] interface {
	Const(v float64) T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
}

// Float is the float64 Ring
type Float struct{}

func (Float) Const(v float64) float64  { return v }
func (Float) Add(a, b float64) float64 { return a + b }
func (Float) Sub(a, b float64) float64 { return a - b }
func (Float) Mul(a, b float64) float64 { return a * b }

// scale returns c*a, skipping the product when c is one
func scale[T any](r Ring[T], c float64, a T) T {
	if c == 1 {
		return a
	}
	return r.Mul(r.Const(c), a)
}

// power returns a^n for n >= 1 by repeated products
func power[T any](r Ring[T], a T, n int) T {
	p := a
	for i := 1; i < n; i++ {
		p = r.Mul(p, a)
	}
	return p
}

// Barycentric completes a reference point ξ of dimension d to its d+1
// barycentric coordinates: λ_a = ξ_a for a < d and λ_d = 1 - Σξ.
func Barycentric[T any](r Ring[T], pt []T) []T {
	lam := make([]T, len(pt)+1)
	copy(lam, pt)
	last := r.Const(1)
	for _, x := range pt {
		last = r.Sub(last, x)
	}
	lam[len(pt)] = last
	return lam
}
