package InputParameters

import (
	"fmt"
	"os"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/meshview/basis"
	"github.com/notargets/meshview/codegen"
	"github.com/notargets/meshview/render"
)

// ViewParameters obtained from the YAML input file
type ViewParameters struct {
	Title        string         `json:"Title"`
	Subdivision  int            `json:"Subdivision"` // Extra lattice cuts per curved element edge
	Order        int            `json:"Order"`       // Polynomial order of the evaluator and field samples
	Basis        string         `json:"Basis"`       // bernstein or dubiner
	Language     string         `json:"Language"`    // glsl or wgsl
	FunctionName string         `json:"FunctionName"`
	Workers      int            `json:"Workers"`
	Boundaries   map[string]int `json:"Boundaries"` // Boundary name to index, for reports
}

// NewViewParameters returns the defaults used when no file is given
func NewViewParameters() *ViewParameters {
	return &ViewParameters{
		Title:        "meshview",
		Order:        1,
		Basis:        basis.Bernstein.String(),
		Language:     codegen.GLSL.String(),
		FunctionName: codegen.DefaultFunctionName,
	}
}

// ReadFile parses a YAML file over the current values
func (vp *ViewParameters) ReadFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	if err = vp.Parse(data); err != nil {
		return fmt.Errorf("%s: %w", fileName, err)
	}
	return nil
}

func (vp *ViewParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, vp)
}

// Resolution is the lattice resolution of a curved element: one more than
// the number of extra cuts
func (vp *ViewParameters) Resolution() int { return vp.Subdivision + 1 }

// RenderConfig returns the render settings
func (vp *ViewParameters) RenderConfig() render.Config {
	return render.Config{Resolution: vp.Resolution(), Workers: vp.Workers}
}

// Emitter returns the code emitter and basis family
func (vp *ViewParameters) Emitter() (em codegen.Emitter, family basis.Family, err error) {
	if em.Dialect, err = codegen.ParseDialect(vp.Language); err != nil {
		return
	}
	if family, err = basis.ParseFamily(vp.Basis); err != nil {
		return
	}
	em.FunctionName = vp.FunctionName
	return
}

func (vp *ViewParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", vp.Title)
	fmt.Printf("[%d]\t\t\t\t= Subdivision\n", vp.Subdivision)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", vp.Order)
	fmt.Printf("[%s]\t\t\t= Basis\n", vp.Basis)
	fmt.Printf("[%s]\t\t\t= Language\n", vp.Language)
	fmt.Printf("[%s]\t\t\t= Function Name\n", vp.FunctionName)
	fmt.Printf("[%d]\t\t\t\t= Workers\n", vp.Workers)
	keys := make([]string, len(vp.Boundaries))
	i := 0
	for k := range vp.Boundaries {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Boundaries[%s] = %d\n", key, vp.Boundaries[key])
	}
}
