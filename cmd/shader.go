package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/notargets/meshview/InputParameters"
	"github.com/notargets/meshview/basis"
	"github.com/notargets/meshview/codegen"
	"github.com/notargets/meshview/shaderc"
	"github.com/notargets/meshview/utils"
)

// ShaderCmd represents the shader command
var ShaderCmd = &cobra.Command{
	Use:   "shader",
	Short: "Generate a scalar evaluator function for a basis",
	Long: `
Evaluates every basis function of the reference element symbolically, removes
common subexpressions and writes a function of (x, y, z) summing the element's
coefficients against the basis. WGSL output can be checked with naga.

meshview shader -e tet --order 3 --language wgsl --validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vp, err := readParameters(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("element")
		et, err := parseElement(name)
		if err != nil {
			return err
		}
		validate, _ := cmd.Flags().GetBool("validate")
		output, _ := cmd.Flags().GetString("output")
		if len(output) == 0 {
			return runShader(cmd.OutOrStdout(), vp, et, validate)
		}
		return writeFile(output, func(w io.Writer) error {
			return runShader(w, vp, et, validate)
		})
	},
}

func init() {
	rootCmd.AddCommand(ShaderCmd)
	ShaderCmd.Flags().StringP("element", "e", "triangle", "reference element: line, triangle or tet")
	ShaderCmd.Flags().IntP("order", "n", 1, "polynomial order")
	ShaderCmd.Flags().String("basis", "bernstein", "basis family: bernstein or dubiner")
	ShaderCmd.Flags().String("language", "glsl", "shading language: glsl or wgsl")
	ShaderCmd.Flags().String("name", codegen.DefaultFunctionName, "name of the generated function")
	ShaderCmd.Flags().Bool("validate", false, "compile the WGSL output to SPIR-V")
	ShaderCmd.Flags().StringP("output", "o", "", "write the function to this file")
}

func runShader(w io.Writer, vp *InputParameters.ViewParameters, et utils.ElementType, validate bool) error {
	em, family, err := vp.Emitter()
	if err != nil {
		return err
	}
	prog, err := em.Generate(basis.Set[codegen.Expr]{Family: family}, et, vp.Order)
	if err != nil {
		return err
	}
	if validate {
		words, err := shaderc.Validate(prog)
		if err != nil {
			return err
		}
		utils.Logger().Info("evaluator compiled", "spirvWords", len(words))
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		fmt.Fprintf(w, "// %s evaluator, %s basis, order %d, %d functions, %d temporaries\n",
			et, family, vp.Order, prog.NDof(), len(prog.Entries))
	}
	_, err = io.WriteString(w, prog.Text)
	return err
}
