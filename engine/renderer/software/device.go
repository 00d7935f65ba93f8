// Package software implements renderer.Device on the CPU. Triangles are
// rasterised with golang.org/x/image/vector and programs are emulated from
// their features, so generated shaders never need to run.
package software

import (
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type target struct {
	color *image.RGBA
	depth []float32
}

func newTarget(width, height int) *target {
	t := &target{
		color: image.NewRGBA(image.Rect(0, 0, width, height)),
		depth: make([]float32, width*height),
	}
	for i := range t.depth {
		t.depth[i] = 1
	}
	return t
}

type program struct {
	desc     renderer.ProgramDesc
	uniforms map[string]interface{}
}

type buffer struct {
	kind    renderer.BufferKind
	floats  []float32
	indices []uint16
}

type texture struct {
	width, height int
	pixels        []uint8
}

type attribute struct {
	handle metadata.BufferHandle
	size   int
}

/**
 * @brief A CPU renderer.Device. Depth testing, face culling, blending and
 * the colour mask are honoured; stencil state is tracked but not tested.
 * Only triangle primitives produce fragments.
 */
type Device struct {
	width, height int
	canvas        *target

	programs map[metadata.ProgramHandle]*program
	buffers  map[metadata.BufferHandle]*buffer
	textures map[metadata.TextureHandle]*texture
	targets  map[metadata.TargetHandle]*target
	units    []metadata.TextureHandle
	handles  uint32

	bound      *target
	current    *program
	attributes map[renderer.Attribute]attribute
	indices    metadata.BufferHandle

	viewport     [4]int32
	clearColor   gputypes.Color
	clearDepth   float32
	clearStencil uint32
	depthTest    bool
	depthFunc    gputypes.CompareFunction
	depthMask    bool
	cull         bool
	cullMode     gputypes.CullMode
	frontFace    gputypes.FrontFace
	blend        bool
	blendState   gputypes.BlendState
	colorMask    gputypes.ColorWriteMask
	stencilTest  bool
	stencilFunc  [2]metadata.StencilFace
}

func NewDevice(width, height int) *Device {
	d := &Device{
		width:  width,
		height: height,
		units:  make([]metadata.TextureHandle, 8),
	}
	d.reset()
	core.LogDebug("software device created (%dx%d)", width, height)
	return d
}

// reset drops every resource and returns to the initial device state.
func (d *Device) reset() {
	d.canvas = newTarget(d.width, d.height)
	d.bound = d.canvas
	d.programs = make(map[metadata.ProgramHandle]*program)
	d.buffers = make(map[metadata.BufferHandle]*buffer)
	d.textures = make(map[metadata.TextureHandle]*texture)
	d.targets = make(map[metadata.TargetHandle]*target)
	d.attributes = make(map[renderer.Attribute]attribute)
	clear(d.units)
	d.current = nil
	d.indices = 0
	d.viewport = [4]int32{0, 0, int32(d.width), int32(d.height)}
	d.clearColor = gputypes.Color{}
	d.clearDepth = 1
	d.depthTest = false
	d.depthFunc = gputypes.CompareFunctionLess
	d.depthMask = true
	d.cull = false
	d.cullMode = gputypes.CullModeBack
	d.frontFace = gputypes.FrontFaceCCW
	d.blend = false
	d.blendState = gputypes.BlendStateReplace()
	d.colorMask = gputypes.ColorWriteMaskAll
	d.stencilTest = false
	d.stencilFunc = [2]metadata.StencilFace{metadata.DefaultStencilFace(), metadata.DefaultStencilFace()}
}

// LoseContext simulates a lost context: every handle handed out so far
// becomes invalid and the canvas is blank.
func (d *Device) LoseContext() {
	core.LogWarn("software device context lost")
	d.reset()
}

// Resize changes the drawing buffer size. The canvas content is discarded.
func (d *Device) Resize(width, height int) {
	rebind := d.bound == d.canvas
	d.width, d.height = width, height
	d.canvas = newTarget(width, height)
	if rebind {
		d.bound = d.canvas
	}
}

// Image returns a copy of the canvas.
func (d *Device) Image() *image.RGBA {
	img := image.NewRGBA(d.canvas.color.Rect)
	copy(img.Pix, d.canvas.color.Pix)
	return img
}

func (d *Device) nextHandle() uint32 {
	d.handles++
	return d.handles
}

func (d *Device) DrawingBufferSize() (int, int) {
	return d.width, d.height
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.viewport = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(color gputypes.Color) {
	d.clearColor = color
}

func (d *Device) ClearDepth(depth float32) {
	d.clearDepth = depth
}

func (d *Device) ClearStencil(value uint32) {
	d.clearStencil = value
}

func (d *Device) Clear(mask renderer.ClearMask) {
	t := d.bound
	if mask&renderer.ClearColorBit != 0 {
		c := [4]uint8{toByte(float32(d.clearColor.R)), toByte(float32(d.clearColor.G)), toByte(float32(d.clearColor.B)), toByte(float32(d.clearColor.A))}
		for i := 0; i < len(t.color.Pix); i += 4 {
			copy(t.color.Pix[i:i+4], c[:])
		}
	}
	if mask&renderer.ClearDepthBit != 0 {
		for i := range t.depth {
			t.depth[i] = d.clearDepth
		}
	}
}

func (d *Device) Enable(capability renderer.Capability) {
	d.setCapability(capability, true)
}

func (d *Device) Disable(capability renderer.Capability) {
	d.setCapability(capability, false)
}

func (d *Device) setCapability(capability renderer.Capability, on bool) {
	switch capability {
	case renderer.CapDepthTest:
		d.depthTest = on
	case renderer.CapCullFace:
		d.cull = on
	case renderer.CapBlend:
		d.blend = on
	case renderer.CapStencilTest:
		d.stencilTest = on
	}
}

func (d *Device) DepthFunc(fn gputypes.CompareFunction) {
	d.depthFunc = fn
}

func (d *Device) DepthMask(write bool) {
	d.depthMask = write
}

func (d *Device) ColorMask(mask gputypes.ColorWriteMask) {
	d.colorMask = mask
}

func (d *Device) BlendState(state gputypes.BlendState) {
	d.blendState = state
}

func (d *Device) FrontFace(face gputypes.FrontFace) {
	d.frontFace = face
}

func (d *Device) CullFace(mode gputypes.CullMode) {
	d.cullMode = mode
}

func (d *Device) StencilFunc(side renderer.StencilSide, fn gputypes.CompareFunction, ref, mask uint32) {
	f := &d.stencilFunc[side]
	f.Compare, f.Ref, f.Mask = fn, ref, mask
}

func (d *Device) StencilOp(side renderer.StencilSide, sfail, dpfail, dppass gputypes.StencilOperation) {
	f := &d.stencilFunc[side]
	f.FailOp, f.DepthFailOp, f.PassOp = sfail, dpfail, dppass
}

func (d *Device) CreateProgram(desc renderer.ProgramDesc) (metadata.ProgramHandle, error) {
	switch desc.Kind {
	case metadata.ProgramKindDraw, metadata.ProgramKindPickObject, metadata.ProgramKindPickPrimitive:
	default:
		return 0, fmt.Errorf("program %s: unsupported kind %s", desc.Label, desc.Kind)
	}
	if desc.Source == "" && len(desc.Code) == 0 {
		return 0, fmt.Errorf("program %s: no shader source", desc.Label)
	}
	h := metadata.ProgramHandle(d.nextHandle())
	d.programs[h] = &program{desc: desc, uniforms: make(map[string]interface{})}
	return h, nil
}

func (d *Device) DeleteProgram(handle metadata.ProgramHandle) {
	if p, ok := d.programs[handle]; ok && p == d.current {
		d.current = nil
	}
	delete(d.programs, handle)
}

func (d *Device) UseProgram(handle metadata.ProgramHandle) {
	d.current = d.programs[handle]
}

// SetUniform sets a uniform of the current program, like glUniform.
func (d *Device) SetUniform(name string, value interface{}) {
	if d.current != nil {
		d.current.uniforms[name] = value
	}
}

func (d *Device) CreateBuffer(kind renderer.BufferKind, data interface{}) (metadata.BufferHandle, error) {
	b := &buffer{kind: kind}
	switch v := data.(type) {
	case []float32:
		if kind != renderer.ArrayBuffer {
			return 0, fmt.Errorf("float data for index buffer")
		}
		b.floats = slices.Clone(v)
	case []uint16:
		if kind != renderer.ElementBuffer {
			return 0, fmt.Errorf("index data for attribute buffer")
		}
		b.indices = slices.Clone(v)
	default:
		return 0, fmt.Errorf("unsupported buffer data %T", data)
	}
	h := metadata.BufferHandle(d.nextHandle())
	d.buffers[h] = b
	return h, nil
}

func (d *Device) DeleteBuffer(handle metadata.BufferHandle) {
	delete(d.buffers, handle)
}

func (d *Device) BindAttribute(attr renderer.Attribute, handle metadata.BufferHandle, size int) {
	d.attributes[attr] = attribute{handle: handle, size: size}
}

func (d *Device) BindIndices(handle metadata.BufferHandle) {
	d.indices = handle
}

func (d *Device) CreateTexture(width, height uint32, pixels []uint8) (metadata.TextureHandle, error) {
	if len(pixels) != int(width*height*4) {
		return 0, fmt.Errorf("texture %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pixels))
	}
	h := metadata.TextureHandle(d.nextHandle())
	d.textures[h] = &texture{width: int(width), height: int(height), pixels: slices.Clone(pixels)}
	return h, nil
}

func (d *Device) DeleteTexture(handle metadata.TextureHandle) {
	delete(d.textures, handle)
}

func (d *Device) BindTexture(unit int, handle metadata.TextureHandle) {
	if unit >= 0 && unit < len(d.units) {
		d.units[unit] = handle
	}
}

func (d *Device) MaxTextureUnits() int {
	return len(d.units)
}

func (d *Device) CreateRenderTarget(width, height int) (metadata.TargetHandle, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid render target size %dx%d", width, height)
	}
	h := metadata.TargetHandle(d.nextHandle())
	d.targets[h] = newTarget(width, height)
	return h, nil
}

func (d *Device) DeleteRenderTarget(handle metadata.TargetHandle) {
	if t, ok := d.targets[handle]; ok && t == d.bound {
		d.bound = d.canvas
	}
	delete(d.targets, handle)
}

func (d *Device) BindRenderTarget(handle metadata.TargetHandle) {
	if t, ok := d.targets[handle]; ok {
		d.bound = t
		return
	}
	d.bound = d.canvas
}

func (d *Device) ReadPixel(x, y int) [4]uint8 {
	img := d.bound.color
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return [4]uint8{}
	}
	i := img.PixOffset(x, y)
	return [4]uint8(img.Pix[i : i+4])
}
