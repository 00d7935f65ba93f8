package chunks

import (
	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/** @brief Issues the draw call. Applied once per object, never skipped. */
type drawChunk struct {
	geometry *metadata.Geometry
}

func newDrawChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &drawChunk{geometry: state.(*metadata.Geometry)}
}

func (c *drawChunk) Draw(ctx *renderer.FrameContext) {
	c.draw(ctx.Device)
	ctx.Stats.DrawElements++
}

// PickObject draws in the colour of the object's position in the pick list, plus one.
func (c *drawChunk) PickObject(ctx *renderer.FrameContext) {
	rgba := renderer.EncodePickColor(ctx.PickIndex + 1)
	rgba[3] = 0xff
	ctx.Device.SetUniform(renderer.UniformPickColor, renderer.PickColorVec4(rgba))
	ctx.PickIndex++
	c.draw(ctx.Device)
}

func (c *drawChunk) PickPrimitive(ctx *renderer.FrameContext) {
	if c.geometry.Primitive != gputypes.PrimitiveTopologyTriangleList {
		return
	}
	ctx.Device.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, c.geometry.TriangleCount()*3)
}

func (c *drawChunk) draw(d renderer.Device) {
	if c.geometry.Indexed() {
		d.DrawElements(c.geometry.Primitive, len(c.geometry.Indices), gputypes.IndexFormatUint16)
	} else {
		d.DrawArrays(c.geometry.Primitive, 0, c.geometry.VertexCount())
	}
}
