package chunks

import (
	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief Binds a geometry's vertex attributes. Buffers are uploaded the first
 * time the geometry is drawn and shared by every chunk bound to it. The
 * triangle picking pass needs un-indexed positions with one pick colour per
 * triangle; those buffers belong to the chunk.
 */
type geometryChunk struct {
	geometry *metadata.Geometry

	pickPositions metadata.BufferHandle
	pickColors    metadata.BufferHandle
}

func newGeometryChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &geometryChunk{geometry: state.(*metadata.Geometry)}
}

func (c *geometryChunk) Draw(ctx *renderer.FrameContext) {
	d := ctx.Device
	if !c.upload(d) {
		return
	}
	b := &c.geometry.Buffers
	d.BindAttribute(renderer.AttributePosition, b.Positions, 3)
	if b.Normals != 0 {
		d.BindAttribute(renderer.AttributeNormal, b.Normals, 3)
	}
	if b.UV != 0 {
		d.BindAttribute(renderer.AttributeUV, b.UV, 2)
	}
	if b.Colors != 0 {
		d.BindAttribute(renderer.AttributeColor, b.Colors, 4)
	}
	if b.Indices != 0 {
		d.BindIndices(b.Indices)
	}
	ctx.Stats.BindArray++
}

func (c *geometryChunk) PickObject(ctx *renderer.FrameContext) {
	d := ctx.Device
	if !c.upload(d) {
		return
	}
	d.BindAttribute(renderer.AttributePosition, c.geometry.Buffers.Positions, 3)
	if c.geometry.Buffers.Indices != 0 {
		d.BindIndices(c.geometry.Buffers.Indices)
	}
}

func (c *geometryChunk) PickPrimitive(ctx *renderer.FrameContext) {
	if c.geometry.Primitive != gputypes.PrimitiveTopologyTriangleList {
		return
	}
	d := ctx.Device
	if c.pickPositions == 0 {
		positions, colors := expandForPicking(c.geometry)
		var err error
		if c.pickPositions, err = d.CreateBuffer(renderer.ArrayBuffer, positions); err != nil {
			core.LogError("failed to create pick positions for geometry %d: %s", c.geometry.StateID(), err.Error())
			return
		}
		if c.pickColors, err = d.CreateBuffer(renderer.ArrayBuffer, colors); err != nil {
			core.LogError("failed to create pick colours for geometry %d: %s", c.geometry.StateID(), err.Error())
			d.DeleteBuffer(c.pickPositions)
			c.pickPositions = 0
			return
		}
	}
	d.BindAttribute(renderer.AttributePosition, c.pickPositions, 3)
	d.BindAttribute(renderer.AttributePickColor, c.pickColors, 4)
}

// Restore forgets buffers of the lost device. They are uploaded again on the next draw.
func (c *geometryChunk) Restore(renderer.Device) {
	c.geometry.Buffers = metadata.GeometryBuffers{}
	c.pickPositions, c.pickColors = 0, 0
}

func (c *geometryChunk) Destroy(device renderer.Device) {
	if c.pickPositions != 0 {
		device.DeleteBuffer(c.pickPositions)
		device.DeleteBuffer(c.pickColors)
		c.pickPositions, c.pickColors = 0, 0
	}
}

func (c *geometryChunk) upload(d renderer.Device) bool {
	g := c.geometry
	if g.Buffers.Uploaded {
		return true
	}
	var b metadata.GeometryBuffers
	var err error
	create := func(kind renderer.BufferKind, data interface{}) metadata.BufferHandle {
		if err != nil {
			return 0
		}
		var h metadata.BufferHandle
		h, err = d.CreateBuffer(kind, data)
		return h
	}
	b.Positions = create(renderer.ArrayBuffer, g.Positions)
	if len(g.Normals) > 0 {
		b.Normals = create(renderer.ArrayBuffer, g.Normals)
	}
	if len(g.UV) > 0 {
		b.UV = create(renderer.ArrayBuffer, g.UV)
	}
	if len(g.Colors) > 0 {
		b.Colors = create(renderer.ArrayBuffer, g.Colors)
	}
	if g.Indexed() {
		b.Indices = create(renderer.ElementBuffer, g.Indices)
	}
	if err != nil {
		core.LogError("failed to upload geometry %d: %s", g.StateID(), err.Error())
		for _, h := range []metadata.BufferHandle{b.Positions, b.Normals, b.UV, b.Colors, b.Indices} {
			if h != 0 {
				d.DeleteBuffer(h)
			}
		}
		return false
	}
	b.Uploaded = true
	g.Buffers = b
	return true
}

// expandForPicking de-indexes the triangles of g. Every vertex of triangle t
// carries the colour encoding t+1 so that zero means no hit.
func expandForPicking(g *metadata.Geometry) (positions, colors []float32) {
	n := g.TriangleCount() * 3
	positions = make([]float32, 0, n*3)
	colors = make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		p := g.Position(g.Element(i))
		positions = append(positions, p.X, p.Y, p.Z)
		rgba := renderer.PickColorVec4(renderer.EncodePickColor(i/3 + 1))
		colors = append(colors, rgba.X, rgba.Y, rgba.Z, rgba.W)
	}
	return positions, colors
}
