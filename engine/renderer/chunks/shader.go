package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/** @brief Applies the default uniform values of a custom shader. */
type shaderChunk struct {
	shader *metadata.Shader
}

func newShaderChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &shaderChunk{shader: state.(*metadata.Shader)}
}

func (c *shaderChunk) Draw(ctx *renderer.FrameContext) {
	if c.shader.Custom() {
		setUniforms(ctx.Device, c.shader.Params)
	}
}

type shaderParamsChunk struct {
	params *metadata.ShaderParams
}

func newShaderParamsChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &shaderParamsChunk{params: state.(*metadata.ShaderParams)}
}

func (c *shaderParamsChunk) Draw(ctx *renderer.FrameContext) {
	setUniforms(ctx.Device, c.params.Params)
}
