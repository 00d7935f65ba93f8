package shadergen

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

/** @brief Turns WGSL source into SPIR-V words. */
type Compiler interface {
	Compile(label, source string) ([]uint32, error)
}

/** @brief Compiles with the pure Go naga toolchain. */
type NagaCompiler struct {
	Options naga.CompileOptions
}

func NewNagaCompiler() *NagaCompiler {
	return &NagaCompiler{Options: naga.DefaultOptions()}
}

func (c *NagaCompiler) Compile(label, source string) ([]uint32, error) {
	spirvBytes, err := naga.CompileWithOptions(source, c.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", label, err)
	}
	// SPIR-V is a stream of little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return code, nil
}
