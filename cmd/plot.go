package cmd

import (
	"fmt"
	"math"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
	"github.com/spf13/cobra"

	"github.com/notargets/meshview/render"
)

// PlotCmd represents the plot command
var PlotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Display the tessellation of a 2D mesh",
	Long: `
Opens a window showing the primitives of a 2D mesh, curved elements
subdivided, as a triangle mesh.

meshview plot -F airfoil.msh -s 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		msh, vp, err := readInputs(cmd)
		if err != nil {
			return err
		}
		if msh.Dimension() != 2 {
			return fmt.Errorf("plot needs a 2D mesh, have %dD", msh.Dimension())
		}
		p, err := render.Tessellate(msh, vp.RenderConfig())
		if err != nil {
			return err
		}
		PlotTriMesh(TriMeshOf(p))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(PlotCmd)
}

// TriMeshOf converts 2D primitives to a chart mesh, three points per triangle
func TriMeshOf(p *render.Primitives) (gm geometry.TriMesh) {
	nv := p.NumVertices()
	gm = geometry.TriMesh{
		XY:       make([]float32, 2*nv),
		TriVerts: make([][3]int64, p.NumPrimitives),
	}
	for v := 0; v < nv; v++ {
		gm.XY[2*v] = p.Coordinates[3*v]
		gm.XY[2*v+1] = p.Coordinates[3*v+1]
	}
	for k := range gm.TriVerts {
		for n := 0; n < 3; n++ {
			gm.TriVerts[k][n] = int64(3*k + n)
		}
	}
	return
}

// PlotTriMesh shows the mesh until the process is stopped
func PlotTriMesh(gm geometry.TriMesh) {
	var (
		xMin, xMax = float32(math.MaxFloat32), float32(-math.MaxFloat32)
		yMin, yMax = float32(math.MaxFloat32), float32(-math.MaxFloat32)
	)
	for i := 0; i+1 < len(gm.XY); i += 2 {
		xMin, xMax = min(xMin, gm.XY[i]), max(xMax, gm.XY[i])
		yMin, yMax = min(yMin, gm.XY[i+1]), max(yMax, gm.XY[i+1])
	}
	ch := chart2d.NewChart2D(xMin, xMax, yMin, yMax,
		1024, 1024, utils2.WHITE, utils2.BLACK)
	ch.AddTriMesh(gm)
	select {}
}
