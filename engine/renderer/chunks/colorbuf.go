package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief Applies blending and the colour write mask. Transparent objects
 * keep blending on even when their colour buffer does not ask for it.
 */
type colorBufChunk struct {
	buf *metadata.ColorBuf
}

func newColorBufChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &colorBufChunk{buf: state.(*metadata.ColorBuf)}
}

func (c *colorBufChunk) Draw(ctx *renderer.FrameContext) {
	d := ctx.Device
	blend := c.buf.BlendEnabled || ctx.Transparent
	if ctx.BlendEnabled != blend {
		if blend {
			d.Enable(renderer.CapBlend)
		} else {
			d.Disable(renderer.CapBlend)
		}
		ctx.BlendEnabled = blend
	}
	if c.buf.BlendEnabled && ctx.Blend != c.buf.Blend {
		d.BlendState(c.buf.Blend)
		ctx.Blend = c.buf.Blend
	}
	if ctx.ColorMask != c.buf.ColorMask {
		d.ColorMask(c.buf.ColorMask)
		ctx.ColorMask = c.buf.ColorMask
	}
}
