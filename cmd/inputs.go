package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshview/InputParameters"
	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/utils"
)

const exampleInputFile = `
########################################
Title: "Test Case"
Subdivision: 3
Order: 2
Basis: Bernstein # Can be "Dubiner"
Language: glsl   # Can be "wgsl"
FunctionName: Eval
########################################
`

// readParameters layers the view parameters: defaults, then the config file
// and flags through viper, then the YAML input file, then flags set on the
// command line
func readParameters(cmd *cobra.Command) (vp *InputParameters.ViewParameters, err error) {
	vp = InputParameters.NewViewParameters()
	vp.Subdivision = viper.GetInt("subdivision")
	vp.Workers = viper.GetInt("workers")
	fileName, _ := cmd.Flags().GetString("inputParametersFile")
	if len(fileName) != 0 {
		if err = vp.ReadFile(fileName); err != nil {
			fmt.Printf("Example File:%s\n", exampleInputFile)
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("subdivision") {
		vp.Subdivision, _ = flags.GetInt("subdivision")
	}
	if flags.Changed("workers") {
		vp.Workers, _ = flags.GetInt("workers")
	}
	for name, field := range map[string]*string{
		"basis":    &vp.Basis,
		"language": &vp.Language,
		"name":     &vp.FunctionName,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*field, _ = flags.GetString(name)
		}
	}
	if flags.Lookup("order") != nil && flags.Changed("order") {
		vp.Order, _ = flags.GetInt("order")
	}
	return
}

// readInputs reads the grid file and the view parameters
func readInputs(cmd *cobra.Command) (msh *mesh.Mesh, vp *InputParameters.ViewParameters, err error) {
	gridFile, _ := cmd.Flags().GetString("gridFile")
	if len(gridFile) == 0 {
		err = fmt.Errorf("must supply a grid file (-F, --gridFile) in .msh (Gmsh) or .neu (Gambit neutral) format")
		return
	}
	if vp, err = readParameters(cmd); err != nil {
		return
	}
	if msh, err = mesh.ReadMeshFile(gridFile); err != nil {
		return
	}
	utils.Logger().Info("mesh loaded", "file", gridFile, "dim", msh.Dimension(),
		"elements", msh.GetNumElements(), "facets", msh.GetNumFacets())
	return
}

// parseElement maps a reference element name to its linear element type
func parseElement(name string) (utils.ElementType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "line", "segment":
		return utils.Line, nil
	case "triangle", "tri":
		return utils.Triangle, nil
	case "tet", "tetrahedron":
		return utils.Tet, nil
	}
	return utils.Unknown, fmt.Errorf("unknown reference element %q, use line, triangle or tet", name)
}
