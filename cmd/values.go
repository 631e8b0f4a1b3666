package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/render"
	"github.com/notargets/meshview/utils"
)

// ValuesCmd represents the values command
var ValuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Sample a coordinate field on every element or boundary facet",
	Long: `
Evaluates one world coordinate through the element maps on the lattice of
resolution Order*(Subdivision+1), in the same barycentric order the primitives
use. Useful for checking field upload against the tessellation.

meshview values -F mesh.msh --order 2 --component z --boundary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		msh, vp, err := readInputs(cmd)
		if err != nil {
			return err
		}
		component, _ := cmd.Flags().GetString("component")
		boundary, _ := cmd.Flags().GetBool("boundary")
		return runValues(cmd.OutOrStdout(), msh, vp.RenderConfig(), vp.Order, component, boundary)
	},
}

func init() {
	rootCmd.AddCommand(ValuesCmd)
	ValuesCmd.Flags().IntP("order", "n", 1, "polynomial order of the sampled field")
	ValuesCmd.Flags().StringP("component", "c", "x", "coordinate to sample: x, y or z")
	ValuesCmd.Flags().BoolP("boundary", "b", false, "sample boundary facets instead of elements")
}

func runValues(w io.Writer, msh *mesh.Mesh, cfg render.Config, order int, component string,
	boundary bool) error {
	c, ok := map[string]int{"x": 0, "y": 1, "z": 2}[component]
	if !ok {
		return fmt.Errorf("unknown component %q, use x, y or z", component)
	}
	field := func(nr int, lam []float64) (float64, error) {
		trafo := msh.ElementMap(nr)
		if boundary {
			trafo = msh.FacetMap(nr)
		}
		X, err := trafo.Map(lam)
		return X[c], err
	}
	vals, err := render.SampleField(msh, cfg, order, boundary, field)
	if err != nil {
		return err
	}
	if nan := utils.CountNaN(vals); nan != 0 {
		utils.Logger().Warn("field samples are not finite", "count", nan)
	}
	var (
		fMin = float32(math.MaxFloat32)
		fMax = -float32(math.MaxFloat32)
	)
	for _, v := range vals {
		fMin, fMax = min(fMin, v), max(fMax, v)
	}
	fmt.Fprintf(w, "Samples              = %d\n", len(vals))
	if len(vals) != 0 {
		fmt.Fprintf(w, "Range of %s           = [%8.5f, %8.5f]\n", component, fMin, fMax)
	}
	return nil
}
