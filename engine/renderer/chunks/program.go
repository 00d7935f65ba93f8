package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/** @brief Binds the program variant for the current pass. */
type programChunk struct {
	program *metadata.Program
}

func newProgramChunk(program *metadata.Program, _ metadata.State) interface{} {
	return &programChunk{program: program}
}

func (c *programChunk) Draw(ctx *renderer.FrameContext) {
	ctx.UseProgram(c.program, c.program.Draw)
	ctx.TextureUnit = 0
}

func (c *programChunk) PickObject(ctx *renderer.FrameContext) {
	ctx.UseProgram(c.program, c.program.PickObject)
}

func (c *programChunk) PickPrimitive(ctx *renderer.FrameContext) {
	ctx.UseProgram(c.program, c.program.PickPrimitive)
}
