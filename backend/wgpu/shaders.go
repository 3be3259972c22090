package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/batch.wgsl
var batchShaderSource string

// Fragment entry points, one per nae.Pipeline.
const (
	vertexEntry   = "vs_main"
	solidEntry    = "fs_solid"
	texturedEntry = "fs_textured"
	textEntry     = "fs_text"
)

// validateShader compiles the batch shader to SPIR-V with naga so a broken
// shader fails at Init instead of inside the driver.
func validateShader() error {
	if _, err := naga.Compile(batchShaderSource); err != nil {
		return fmt.Errorf("wgpu: batch shader: %w", err)
	}
	return nil
}
