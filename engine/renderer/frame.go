package renderer

import (
	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/** @brief Counters gathered during one normal walk. */
type FrameStats struct {
	DrawElements int
	UseProgram   int
	BindTexture  int
	BindArray    int
	/** @brief Seconds spent in the walk. */
	RenderTime float64
}

/**
 * @brief Mirrors the device state during one walk so chunks can skip calls
 * that would not change anything. Chunks coordinate only through this.
 */
type FrameContext struct {
	Device Device
	Pass   int

	DepthbufEnabled bool
	DepthFunc       gputypes.CompareFunction
	DepthMask       bool
	// ClearDepth is negative until a chunk sets it.
	ClearDepth float32

	BlendEnabled bool
	Blend        gputypes.BlendState
	ColorMask    gputypes.ColorWriteMask
	Backfaces    bool
	FrontFace    gputypes.FrontFace
	TextureUnit  int
	// Transparent is set while drawing objects of the transparent bin.
	Transparent  bool
	AmbientColor math.Vec3

	StencilTestEnabled bool
	StencilClearValue  uint32
	StencilFront       metadata.StencilFace
	StencilBack        metadata.StencilFace

	Program    *metadata.Program
	GPUProgram *metadata.GPUProgram

	Stats FrameStats

	BindOutputFramebuffer func(pass int)

	// Pick matrices replace the view and projection of every object when set.
	PickViewMatrix *math.Mat4
	PickProjMatrix *math.Mat4
	PickIndex      int
}

func NewFrameContext(device Device) *FrameContext {
	ctx := &FrameContext{}
	ctx.Reset(device)
	return ctx
}

// Reset restores the constructor defaults. The defaults match the device
// state established at the start of every walk.
func (ctx *FrameContext) Reset(device Device) {
	*ctx = FrameContext{
		Device:          device,
		DepthbufEnabled: true,
		DepthFunc:       gputypes.CompareFunctionLess,
		DepthMask:       true,
		ClearDepth:      -1,
		Blend:           gputypes.BlendStateReplace(),
		ColorMask:       gputypes.ColorWriteMaskAll,
		Backfaces:       true,
		FrontFace:       gputypes.FrontFaceCCW,
		StencilFront:    metadata.DefaultStencilFace(),
		StencilBack:     metadata.DefaultStencilFace(),
	}
}

// ApplyDefaults pushes the state Reset assumes onto the device.
func (ctx *FrameContext) ApplyDefaults() {
	d := ctx.Device
	d.Enable(CapDepthTest)
	d.DepthFunc(ctx.DepthFunc)
	d.DepthMask(ctx.DepthMask)
	d.FrontFace(ctx.FrontFace)
	d.Disable(CapCullFace)
	d.Disable(CapBlend)
	d.BlendState(ctx.Blend)
	d.ColorMask(ctx.ColorMask)
	d.Disable(CapStencilTest)
	d.ClearStencil(ctx.StencilClearValue)
	for _, side := range [...]StencilSide{StencilFront, StencilBack} {
		face := ctx.StencilFront
		if side == StencilBack {
			face = ctx.StencilBack
		}
		d.StencilFunc(side, face.Compare, face.Ref, face.Mask)
		d.StencilOp(side, face.FailOp, face.DepthFailOp, face.PassOp)
	}
}

// UseProgram binds the variant of program for the current pass, skipping
// the call when it is already bound.
func (ctx *FrameContext) UseProgram(program *metadata.Program, variant *metadata.GPUProgram) {
	if ctx.GPUProgram == variant {
		return
	}
	ctx.Device.UseProgram(variant.Handle)
	ctx.Program = program
	ctx.GPUProgram = variant
	ctx.Stats.UseProgram++
}
