package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/notargets/meshview/utils"
)

// Program is a generated evaluator: the temporaries in assignment order, the
// temporary holding each basis function, and the emitted text
type Program struct {
	Name    string
	Dialect Dialect
	Element utils.ElementType
	Order   int
	Entries []string // Right hand side of varN
	Basis   []Expr   // Basis function i is Basis[i]
	Text    string
}

// NDof returns the number of accumulated basis functions
func (p *Program) NDof() int { return len(p.Basis) }

var binaryOp = regexp.MustCompile(`^(var[0-9]+)([-+*])(var[0-9]+)$`)

// Evaluate runs the program on the host for one element's coefficients. It
// understands exactly what a Table produces: coordinate symbols, literals and
// one binary operation between two earlier temporaries.
func (p *Program) Evaluate(x, y, z float64, coeffs []float64) (float64, error) {
	if len(coeffs) != len(p.Basis) {
		return 0, fmt.Errorf("%s needs %d coefficients, have %d", p.Name, len(p.Basis), len(coeffs))
	}
	var (
		vals   = make([]float64, len(p.Entries))
		symbol = map[string]float64{"x": x, "y": y, "z": z}
	)
	load := func(n int, r string) (float64, error) {
		m, err := strconv.Atoi(strings.TrimPrefix(r, "var"))
		if err != nil || m < 0 || m >= n {
			return 0, fmt.Errorf("var%d references %s before assignment", n, r)
		}
		return vals[m], nil
	}
	for n, rhs := range p.Entries {
		if v, ok := symbol[rhs]; ok {
			vals[n] = v
			continue
		}
		if m := binaryOp.FindStringSubmatch(rhs); m != nil {
			a, err := load(n, m[1])
			if err != nil {
				return 0, err
			}
			b, err := load(n, m[3])
			if err != nil {
				return 0, err
			}
			switch m[2] {
			case "+":
				vals[n] = a + b
			case "-":
				vals[n] = a - b
			case "*":
				vals[n] = a * b
			}
			continue
		}
		v, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return 0, fmt.Errorf("var%d: cannot evaluate %q", n, rhs)
		}
		vals[n] = v
	}
	var result float64
	for i, e := range p.Basis {
		v, err := load(len(vals), e.String())
		if err != nil {
			return 0, fmt.Errorf("basis function %d: %w", i, err)
		}
		result += coeffs[i] * v
	}
	return result, nil
}
