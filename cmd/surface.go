package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/render"
)

// SurfaceCmd represents the surface command
var SurfaceCmd = &cobra.Command{
	Use:   "surface",
	Short: "Collect the surface triangles and sample curved boundary facets",
	Long: `
Collects the boundary facets of a 3D mesh, or the elements of a 2D mesh, as
flat triangles. Every curved boundary facet is sampled for corner normals and
edge midpoints.

meshview surface -F mesh.msh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		msh, vp, err := readInputs(cmd)
		if err != nil {
			return err
		}
		return runSurface(cmd.OutOrStdout(), msh, vp.RenderConfig())
	},
}

func init() {
	rootCmd.AddCommand(SurfaceCmd)
}

func runSurface(w io.Writer, msh *mesh.Mesh, cfg render.Config) error {
	s, err := render.BuildSurface(msh, cfg)
	if err != nil {
		return err
	}
	curved := len(s.CurvedData) / s.BlockSize
	fmt.Fprintf(w, "Dimension            = %d\n", s.Dim)
	fmt.Fprintf(w, "Triangles            = %d\n", s.NumTriangles)
	fmt.Fprintf(w, "Boundary Facets      = %d\n", len(s.CurvedIndex))
	fmt.Fprintf(w, "Curved Facets        = %d\n", curved)
	fmt.Fprintf(w, "Floats per Facet     = %d\n", s.BlockSize)
	fmt.Fprintf(w, "Max Index            = %d\n", s.MaxIndex)
	fmt.Fprintf(w, "Bounds               = %v - %v\n", s.Min, s.Max)
	tags := make([]int, 0, len(msh.BoundaryTags))
	for tag := range msh.BoundaryTags {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	for _, tag := range tags {
		fmt.Fprintf(w, "Boundary[%d]          = %s\n", tag, msh.BoundaryTags[tag])
	}
	return nil
}
