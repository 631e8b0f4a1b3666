package codegen

import (
	"fmt"
	"strings"

	"github.com/notargets/meshview/basis"
	"github.com/notargets/meshview/utils"
)

// Basis evaluates the basis functions of an element type symbolically.
// basis.Set[Expr] implements it.
type Basis interface {
	NDof(et utils.ElementType, order int) int
	Evaluate(r basis.Ring[Expr], et utils.ElementType, order int, pt []Expr) ([]Expr, error)
}

// Dialect is the shading language an Emitter writes
type Dialect uint8

const (
	// GLSL reads coefficients from a float texture indexed by inData.element
	GLSL Dialect = iota
	// WGSL reads coefficients from a storage array and takes the element as a
	// fourth argument
	WGSL
)

func (d Dialect) String() string {
	switch d {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	}
	return fmt.Sprintf("Dialect(%d)", d)
}

// ParseDialect is the inverse of Dialect.String, case insensitive
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "glsl", "":
		return GLSL, nil
	case "wgsl":
		return WGSL, nil
	}
	return 0, fmt.Errorf("unknown shading language %q", s)
}

// DefaultFunctionName names the emitted function when none is given
const DefaultFunctionName = "Eval"

// Emitter writes scalar evaluator functions
type Emitter struct {
	Dialect      Dialect
	FunctionName string
}

var coordinates = []string{"x", "y", "z"}

// Generate evaluates every basis function of the element type at the
// symbolic point (x, y[, z]) and writes a function of (x, y, z) that sums
// the element's coefficients against them. The table is private to the call.
func (em Emitter) Generate(b Basis, et utils.ElementType, order int) (*Program, error) {
	d := et.GetDimension()
	if d < 1 || d > 3 {
		return nil, fmt.Errorf("%w: %s", basis.ErrUnsupported, et)
	}
	var (
		table = NewTable()
		pt    = make([]Expr, d)
	)
	for i := range pt {
		pt[i] = table.Symbol(coordinates[i])
	}
	vals, err := b.Evaluate(table, et, order, pt)
	if err != nil {
		return nil, err
	}
	ndof := b.NDof(et, order)
	if ndof != len(vals) {
		return nil, fmt.Errorf("basis returned %d functions for %s order %d, expected %d",
			len(vals), et, order, ndof)
	}
	name := em.FunctionName
	if name == "" {
		name = DefaultFunctionName
	}
	prog := &Program{
		Name:    name,
		Dialect: em.Dialect,
		Element: et,
		Order:   order,
		Entries: table.Entries(),
		Basis:   vals,
	}
	prog.Text = em.write(prog)
	utils.Logger().Debug("generated evaluator", "element", et.String(), "order", order,
		"dialect", em.Dialect.String(), "temporaries", len(prog.Entries), "ndof", ndof)
	return prog, nil
}

func (em Emitter) write(prog *Program) string {
	var (
		sb   strings.Builder
		ndof = len(prog.Basis)
	)
	switch em.Dialect {
	case WGSL:
		fmt.Fprintf(&sb, "fn %s(x: f32, y: f32, z: f32, element: u32) -> f32 {\n", prog.Name)
		sb.WriteString("    var result: f32 = 0.0;\n")
		for n, rhs := range prog.Entries {
			fmt.Fprintf(&sb, "    let %s = %s;\n", ref(n), rhs)
		}
		for i, v := range prog.Basis {
			fmt.Fprintf(&sb, "    result += coefficients[element * %du + %du] * %s;\n", ndof, i, v)
		}
	default:
		fmt.Fprintf(&sb, "float %s(float x, float y, float z)\n{\n", prog.Name)
		sb.WriteString("    float result = 0.0;\n")
		for n, rhs := range prog.Entries {
			fmt.Fprintf(&sb, "    float %s = %s;\n", ref(n), rhs)
		}
		for i, v := range prog.Basis {
			fmt.Fprintf(&sb, "    result += texelFetch(coefficients, inData.element*%d+%d).r * %s;\n",
				ndof, i, v)
		}
	}
	sb.WriteString("    return result;\n}\n")
	return sb.String()
}
