package basis

// scaledJacobi returns t^n P_n^(α,β)(x/t) for n = 0..N. The polynomials are
// homogeneous in (x, t), so the usual three term recurrence needs no
// division:
//
//	P_1 = ((α+β+2)x + (α-β)t)/2
//	P_n = (a x + b t) P_{n-1} - c t² P_{n-2}
func scaledJacobi[T any](r Ring[T], N int, alpha, beta float64, x, t T) []T {
	P := make([]T, N+1)
	P[0] = r.Const(1)
	if N == 0 {
		return P
	}
	P[1] = linear(r, (alpha+beta+2)/2, x, (alpha-beta)/2, t)
	if N == 1 {
		return P
	}
	ab := alpha + beta
	t2 := r.Mul(t, t)
	for n := 2; n <= N; n++ {
		var (
			fn = float64(n)
			h  = 2*fn + ab
			d  = 2 * fn * (fn + ab) * (h - 2)
			a  = (h - 1) * h * (h - 2) / d
			b  = (h - 1) * (alpha*alpha - beta*beta) / d
			c  = 2 * (fn + alpha - 1) * (fn + beta - 1) * h / d
		)
		P[n] = r.Sub(
			r.Mul(linear(r, a, x, b, t), P[n-1]),
			scale(r, c, r.Mul(t2, P[n-2])),
		)
	}
	return P
}

// linear returns a*x + b*t, dropping the t term when b is zero
func linear[T any](r Ring[T], a float64, x T, b float64, t T) T {
	ax := scale(r, a, x)
	if b == 0 {
		return ax
	}
	return r.Add(ax, scale(r, b, t))
}

// dubiner evaluates the orthogonal basis in collapsed coordinates, written
// through barycentrics so every factor stays polynomial:
//
//	segment:  P_i^S(λ1-λ0, λ0+λ1)
//	triangle: P_i^S(λ1-λ0, λ0+λ1) P_j^(2i+1,0)(2λ2-1)
//	tet:      P_i^S(λ1-λ0, λ0+λ1) P_j^(2i+1,0),S(λ2-λ0-λ1, λ0+λ1+λ2) P_k^(2i+2j+2,0)(2λ3-1)
//
// Functions are ordered by i, then j, then k with i+j+k <= order.
func dubiner[T any](r Ring[T], lam []T, order int) []T {
	if order == 0 {
		return []T{r.Const(1)}
	}
	var (
		d    = len(lam) - 1
		one  = r.Const(1)
		x1   = r.Sub(lam[1], lam[0])
		t1   = r.Add(lam[0], lam[1])
		legS = scaledJacobi(r, order, 0, 0, x1, t1)
		vals []T
	)
	if d == 1 {
		return legS
	}
	if d == 2 {
		x2 := r.Sub(r.Mul(r.Const(2), lam[2]), one)
		for i := 0; i <= order; i++ {
			jac := scaledJacobi(r, order-i, float64(2*i+1), 0, x2, one)
			for j := 0; j <= order-i; j++ {
				vals = append(vals, product(r, factor[T]{legS[i], i}, factor[T]{jac[j], j}))
			}
		}
		return vals
	}
	var (
		x2 = r.Sub(lam[2], t1)
		t2 = r.Add(t1, lam[2])
		x3 = r.Sub(r.Mul(r.Const(2), lam[3]), one)
	)
	for i := 0; i <= order; i++ {
		jacS := scaledJacobi(r, order-i, float64(2*i+1), 0, x2, t2)
		for j := 0; j <= order-i; j++ {
			jac := scaledJacobi(r, order-i-j, float64(2*i+2*j+2), 0, x3, one)
			for k := 0; k <= order-i-j; k++ {
				vals = append(vals, product(r,
					factor[T]{legS[i], i}, factor[T]{jacS[j], j}, factor[T]{jac[k], k}))
			}
		}
	}
	return vals
}

type factor[T any] struct {
	val    T
	degree int
}

// product multiplies the factors, skipping degree zero ones which are the
// constant one
func product[T any](r Ring[T], factors ...factor[T]) T {
	var (
		prod T
		have bool
	)
	for _, f := range factors {
		if f.degree == 0 {
			continue
		}
		if have {
			prod = r.Mul(prod, f.val)
		} else {
			prod, have = f.val, true
		}
	}
	if !have {
		return r.Const(1)
	}
	return prod
}
