package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type viewportChunk struct {
	viewport *metadata.Viewport
}

func newViewportChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &viewportChunk{viewport: state.(*metadata.Viewport)}
}

func (c *viewportChunk) Draw(ctx *renderer.FrameContext) {
	b := c.viewport.Boundary
	if c.viewport.AutoBoundary {
		width, height := ctx.Device.DrawingBufferSize()
		b = [4]int32{0, 0, int32(width), int32(height)}
	}
	ctx.Device.Viewport(b[0], b[1], b[2], b[3])
}

func (c *viewportChunk) PickObject(ctx *renderer.FrameContext) {
	c.Draw(ctx)
}

func (c *viewportChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.Draw(ctx)
}
