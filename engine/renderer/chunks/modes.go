package chunks

import (
	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type modesChunk struct {
	modes *metadata.Modes
}

func newModesChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &modesChunk{modes: state.(*metadata.Modes)}
}

func (c *modesChunk) Draw(ctx *renderer.FrameContext) {
	c.faces(ctx)
	d := ctx.Device
	if c.modes.Transparent {
		if !ctx.Transparent {
			d.Enable(renderer.CapBlend)
			if ctx.Blend != gputypes.BlendStateAlpha() {
				ctx.Blend = gputypes.BlendStateAlpha()
				d.BlendState(ctx.Blend)
			}
			ctx.BlendEnabled = true
			ctx.Transparent = true
		}
	} else if ctx.Transparent {
		d.Disable(renderer.CapBlend)
		ctx.BlendEnabled = false
		ctx.Transparent = false
	}
	d.SetUniform(renderer.UniformClippable, c.modes.Clippable)
}

// Picking never blends, only face and clipping state matter.
func (c *modesChunk) PickObject(ctx *renderer.FrameContext) {
	c.faces(ctx)
	ctx.Device.SetUniform(renderer.UniformClippable, c.modes.Clippable)
}

func (c *modesChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.PickObject(ctx)
}

func (c *modesChunk) faces(ctx *renderer.FrameContext) {
	d := ctx.Device
	if ctx.Backfaces != c.modes.Backfaces {
		if c.modes.Backfaces {
			d.Disable(renderer.CapCullFace)
		} else {
			d.Enable(renderer.CapCullFace)
			d.CullFace(gputypes.CullModeBack)
		}
		ctx.Backfaces = c.modes.Backfaces
	}
	if ctx.FrontFace != c.modes.FrontFace {
		d.FrontFace(c.modes.FrontFace)
		ctx.FrontFace = c.modes.FrontFace
	}
}
