package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type clipsChunk struct {
	clips *metadata.Clips
}

func newClipsChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &clipsChunk{clips: state.(*metadata.Clips)}
}

func (c *clipsChunk) Draw(ctx *renderer.FrameContext) {
	d := ctx.Device
	for i, clip := range c.clips.Clips {
		d.SetUniform(renderer.IndexedUniform(renderer.UniformClipMode, i), int32(clip.Mode))
		d.SetUniform(renderer.IndexedUniform(renderer.UniformClipPos, i), clip.Pos)
		d.SetUniform(renderer.IndexedUniform(renderer.UniformClipDir, i), clip.Dir)
	}
}

// Clipped fragments must not be pickable either.
func (c *clipsChunk) PickObject(ctx *renderer.FrameContext) {
	c.Draw(ctx)
}

func (c *clipsChunk) PickPrimitive(ctx *renderer.FrameContext) {
	c.Draw(ctx)
}
