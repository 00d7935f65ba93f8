package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief Applies a depth buffer configuration followed by its paired
 * stencil configuration. Every call is skipped when the frame context
 * shows the device is already in the wanted state.
 */
type depthStencilChunk struct {
	pair *metadata.DepthStencil
}

func newDepthStencilChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &depthStencilChunk{pair: state.(*metadata.DepthStencil)}
}

func (c *depthStencilChunk) Draw(ctx *renderer.FrameContext) {
	if c.pair.Depth != nil {
		applyDepth(ctx, c.pair.Depth)
	}
	if c.pair.Stencil != nil {
		applyStencil(ctx, c.pair.Stencil)
	}
}

func (c *depthStencilChunk) PickObject(ctx *renderer.FrameContext) {
	c.Draw(ctx)
}

func (c *depthStencilChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.Draw(ctx)
}

func applyDepth(ctx *renderer.FrameContext, depth *metadata.DepthBuf) {
	d := ctx.Device
	if ctx.DepthbufEnabled != depth.Active {
		if depth.Active {
			d.Enable(renderer.CapDepthTest)
		} else {
			d.Disable(renderer.CapDepthTest)
		}
		ctx.DepthbufEnabled = depth.Active
	}
	if ctx.ClearDepth != depth.ClearDepth {
		d.ClearDepth(depth.ClearDepth)
		ctx.ClearDepth = depth.ClearDepth
	}
	if ctx.DepthFunc != depth.DepthFunc {
		d.DepthFunc(depth.DepthFunc)
		ctx.DepthFunc = depth.DepthFunc
	}
	if ctx.DepthMask != depth.DepthMask {
		d.DepthMask(depth.DepthMask)
		ctx.DepthMask = depth.DepthMask
	}
}

func applyStencil(ctx *renderer.FrameContext, stencil *metadata.StencilBuf) {
	d := ctx.Device
	if ctx.StencilTestEnabled != stencil.Active {
		if stencil.Active {
			d.Enable(renderer.CapStencilTest)
		} else {
			d.Disable(renderer.CapStencilTest)
		}
		ctx.StencilTestEnabled = stencil.Active
	}
	if ctx.StencilClearValue != stencil.ClearValue {
		d.ClearStencil(stencil.ClearValue)
		ctx.StencilClearValue = stencil.ClearValue
	}
	applyStencilFace(d, renderer.StencilFront, &ctx.StencilFront, stencil.Front)
	applyStencilFace(d, renderer.StencilBack, &ctx.StencilBack, stencil.Back)
	if stencil.Clear {
		d.Clear(renderer.ClearStencilBit)
	}
}

func applyStencilFace(d renderer.Device, side renderer.StencilSide, current *metadata.StencilFace, want metadata.StencilFace) {
	if current.Compare != want.Compare || current.Ref != want.Ref || current.Mask != want.Mask {
		d.StencilFunc(side, want.Compare, want.Ref, want.Mask)
		current.Compare, current.Ref, current.Mask = want.Compare, want.Ref, want.Mask
	}
	if current.FailOp != want.FailOp || current.DepthFailOp != want.DepthFailOp || current.PassOp != want.PassOp {
		d.StencilOp(side, want.FailOp, want.DepthFailOp, want.PassOp)
		current.FailOp, current.DepthFailOp, current.PassOp = want.FailOp, want.DepthFailOp, want.PassOp
	}
}
