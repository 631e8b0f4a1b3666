package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/meshview/mesh"
	"github.com/notargets/meshview/render"
	"github.com/notargets/meshview/utils"
)

// TessellateCmd represents the tessellate command
var TessellateCmd = &cobra.Command{
	Use:   "tessellate",
	Short: "Subdivide the mesh into flat render primitives",
	Long: `
Converts every element into flat primitives. Straight sided elements become one
primitive, curved ones are cut on a barycentric lattice of resolution
Subdivision+1. The primitives can be written as a little endian binary dump.

meshview tessellate -F mesh.msh -s 3 -o mesh.prim`,
	RunE: func(cmd *cobra.Command, args []string) error {
		msh, vp, err := readInputs(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		usePerf, _ := cmd.Flags().GetBool("perf")
		return runTessellate(cmd.OutOrStdout(), msh, vp.RenderConfig(), output, usePerf)
	},
}

func init() {
	rootCmd.AddCommand(TessellateCmd)
	TessellateCmd.Flags().StringP("output", "o", "", "write the primitives to this file")
	TessellateCmd.Flags().Bool("perf", false, "count CPU instructions spent tessellating (Linux)")
}

func runTessellate(w io.Writer, msh *mesh.Mesh, cfg render.Config, output string, usePerf bool) (err error) {
	var (
		p   *render.Primitives
		run = func() (err error) {
			p, err = render.Tessellate(msh, cfg)
			return
		}
	)
	if usePerf {
		var count uint64
		count, err = countInstructions(run)
		switch {
		case err == nil:
			fmt.Fprintf(w, "%d CPU instructions\n", count)
		case p == nil:
			// Perf events unavailable, the work never ran
			utils.Logger().Warn("instruction count unavailable", "err", err)
			err = run()
		default:
			utils.Logger().Warn("instruction count unavailable", "err", err)
			err = nil
		}
	} else {
		err = run()
	}
	if err != nil {
		return
	}
	utils.Logger().Debug("memory", "usage", utils.MemUsage())
	fmt.Fprintf(w, "Dimension            = %d\n", p.Dim)
	fmt.Fprintf(w, "Resolution           = %d\n", cfg.Resolution)
	fmt.Fprintf(w, "Elements             = %d\n", msh.GetNumElements())
	fmt.Fprintf(w, "Primitives           = %d\n", p.NumPrimitives)
	fmt.Fprintf(w, "Vertices             = %d\n", p.NumVertices())
	fmt.Fprintf(w, "Max Material Index   = %d\n", p.MaxIndex)
	fmt.Fprintf(w, "Bounds               = %v - %v\n", p.Min, p.Max)
	var ve *render.VolumeElements
	if ve, err = render.BuildVolumeElements(msh); err != nil {
		return
	}
	fmt.Fprintf(w, "Curved Elements      = %d\n", ve.NumCurved)
	if len(output) == 0 {
		return
	}
	if err = writeFile(output, p.WriteBinary); err != nil {
		return
	}
	fmt.Fprintf(w, "Wrote %s\n", output)
	return
}

// writeFile creates fileName and buffers write into it. Flush and close
// errors are returned when write succeeds.
func writeFile(fileName string, write func(w io.Writer) error) (err error) {
	var f *os.File
	if f, err = os.Create(fileName); err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return
	}
	return bw.Flush()
}
