package chunks

import (
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type modelTransformChunk struct {
	transform *metadata.Transform
}

func newModelTransformChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &modelTransformChunk{transform: state.(*metadata.Transform)}
}

func (c *modelTransformChunk) Draw(ctx *renderer.FrameContext) {
	ctx.Device.SetUniform(renderer.UniformModelMatrix, c.transform.Matrix())
	ctx.Device.SetUniform(renderer.UniformModelNormalMatrix, c.transform.NormalMatrix())
}

func (c *modelTransformChunk) PickObject(ctx *renderer.FrameContext) {
	ctx.Device.SetUniform(renderer.UniformModelMatrix, c.transform.Matrix())
}

func (c *modelTransformChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.PickObject(ctx)
}

/**
 * @brief Sets the view matrix. Billboarding and stationary objects are
 * handled by the generated program, which knows both from the object hash.
 * Pick passes substitute the ray pick matrix when one is set.
 */
type viewTransformChunk struct {
	transform *metadata.Transform
}

func newViewTransformChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &viewTransformChunk{transform: state.(*metadata.Transform)}
}

func (c *viewTransformChunk) Draw(ctx *renderer.FrameContext) {
	ctx.Device.SetUniform(renderer.UniformViewMatrix, c.transform.Matrix())
	ctx.Device.SetUniform(renderer.UniformViewNormalMatrix, c.transform.NormalMatrix())
}

func (c *viewTransformChunk) PickObject(ctx *renderer.FrameContext) {
	ctx.Device.SetUniform(renderer.UniformViewMatrix, pickMatrix(ctx.PickViewMatrix, c.transform))
}

func (c *viewTransformChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.PickObject(ctx)
}

type projTransformChunk struct {
	transform *metadata.Transform
}

func newProjTransformChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &projTransformChunk{transform: state.(*metadata.Transform)}
}

func (c *projTransformChunk) Draw(ctx *renderer.FrameContext) {
	ctx.Device.SetUniform(renderer.UniformProjMatrix, c.transform.Matrix())
}

func (c *projTransformChunk) PickObject(ctx *renderer.FrameContext) {
	ctx.Device.SetUniform(renderer.UniformProjMatrix, pickMatrix(ctx.PickProjMatrix, c.transform))
}

func (c *projTransformChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.PickObject(ctx)
}

func pickMatrix(override *math.Mat4, transform *metadata.Transform) math.Mat4 {
	if override != nil {
		return *override
	}
	return transform.Matrix()
}
