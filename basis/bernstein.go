package basis

// exponents lists every α with |α| = order over n barycentric coordinates,
// leading exponents descending: for order 1 that is e_0, e_1, ..., e_{n-1}
func exponents(n, order int) [][]int {
	var (
		out   [][]int
		alpha = make([]int, n)
		walk  func(a, rem int)
	)
	walk = func(a, rem int) {
		if a == n-1 {
			alpha[a] = rem
			out = append(out, append([]int(nil), alpha...))
			return
		}
		for e := rem; e >= 0; e-- {
			alpha[a] = e
			walk(a+1, rem-e)
		}
	}
	walk(0, order)
	return out
}

// multinomial returns |α|!/Πα_a!
func multinomial(alpha []int) float64 {
	var (
		c float64 = 1
		n int
	)
	for _, a := range alpha {
		for i := 1; i <= a; i++ {
			n++
			c = c * float64(n) / float64(i)
		}
	}
	return c
}

func bernstein[T any](r Ring[T], lam []T, order int) []T {
	var (
		alphas = exponents(len(lam), order)
		vals   = make([]T, len(alphas))
	)
	for m, alpha := range alphas {
		var (
			prod T
			have bool
		)
		for a, e := range alpha {
			if e == 0 {
				continue
			}
			f := power(r, lam[a], e)
			if have {
				prod = r.Mul(prod, f)
			} else {
				prod, have = f, true
			}
		}
		if !have {
			vals[m] = r.Const(1)
			continue
		}
		vals[m] = scale(r, multinomial(alpha), prod)
	}
	return vals
}
