// Package shaderc checks generated evaluator programs by compiling them to
// SPIR-V with naga.
package shaderc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"

	"github.com/notargets/meshview/codegen"
	"github.com/notargets/meshview/utils"
)

// ErrDialect is returned when a program is not WGSL
var ErrDialect = errors.New("shaderc: only WGSL programs can be compiled")

// SPIRVMagic is the first word of every SPIR-V module
const SPIRVMagic uint32 = 0x07230203

// CompileWGSL compiles WGSL source to SPIR-V words
func CompileWGSL(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V output of %d bytes is not word aligned", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if len(words) == 0 || words[0] != SPIRVMagic {
		return nil, fmt.Errorf("invalid SPIR-V header")
	}
	return words, nil
}

// Module wraps an evaluator function into a complete compute shader: the
// coefficient buffer it reads, an output buffer, and an entry point calling it
// once per element at the reference centroid
func Module(prog *codegen.Program) (string, error) {
	if prog.Dialect != codegen.WGSL {
		return "", fmt.Errorf("%w: have %s", ErrDialect, prog.Dialect)
	}
	var sb strings.Builder
	sb.WriteString("@group(0) @binding(0) var<storage, read> coefficients: array<f32>;\n")
	sb.WriteString("@group(0) @binding(1) var<storage, read_write> values: array<f32>;\n\n")
	sb.WriteString(prog.Text)
	sb.WriteString("\n@compute @workgroup_size(64)\n")
	sb.WriteString("fn main(@builtin(global_invocation_id) id: vec3<u32>) {\n")
	fmt.Fprintf(&sb, "    values[id.x] = %s(0.25, 0.25, 0.25, id.x);\n", prog.Name)
	sb.WriteString("}\n")
	return sb.String(), nil
}

// Validate compiles prog as a compute module and returns its SPIR-V
func Validate(prog *codegen.Program) ([]uint32, error) {
	src, err := Module(prog)
	if err != nil {
		return nil, err
	}
	words, err := CompileWGSL(src)
	if err != nil {
		return nil, err
	}
	utils.Logger().Debug("validated evaluator", "function", prog.Name, "spirvWords", len(words))
	return words, nil
}
