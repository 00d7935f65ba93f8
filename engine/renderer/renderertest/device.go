// Package renderertest provides a recording Device for tests.
package renderertest

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

/**
 * @brief A Device that records every call and keeps just enough state to
 * answer queries. ReadPixel returns whatever was stored in Pixels.
 */
type Device struct {
	Width  int
	Height int
	Calls  []Call

	Uniforms map[string]interface{}
	Programs map[metadata.ProgramHandle]renderer.ProgramDesc
	Buffers  map[metadata.BufferHandle]interface{}
	Targets  map[metadata.TargetHandle][2]int
	Pixels   map[[2]int][4]uint8
	Bound    metadata.TargetHandle

	// FailProgram, when set, is consulted by CreateProgram.
	FailProgram func(desc renderer.ProgramDesc) error

	lastHandle uint32
}

func NewDevice(width, height int) *Device {
	return &Device{
		Width:    width,
		Height:   height,
		Uniforms: make(map[string]interface{}),
		Programs: make(map[metadata.ProgramHandle]renderer.ProgramDesc),
		Buffers:  make(map[metadata.BufferHandle]interface{}),
		Targets:  make(map[metadata.TargetHandle][2]int),
		Pixels:   make(map[[2]int][4]uint8),
	}
}

func (d *Device) record(name string, args ...interface{}) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) handle() uint32 {
	d.lastHandle++
	return d.lastHandle
}

// Count returns how many calls named name were recorded.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Named returns the recorded calls named name, in order.
func (d *Device) Named(name string) []Call {
	var calls []Call
	for _, c := range d.Calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}

// ResetCalls forgets the recorded calls but keeps resources.
func (d *Device) ResetCalls() {
	d.Calls = nil
}

func (d *Device) DrawingBufferSize() (int, int) {
	return d.Width, d.Height
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
}

func (d *Device) ClearColor(color gputypes.Color) {
	d.record("ClearColor", color)
}

func (d *Device) ClearDepth(depth float32) {
	d.record("ClearDepth", depth)
}

func (d *Device) ClearStencil(value uint32) {
	d.record("ClearStencil", value)
}

func (d *Device) Clear(mask renderer.ClearMask) {
	d.record("Clear", mask)
}

func (d *Device) Enable(capability renderer.Capability) {
	d.record("Enable", capability)
}

func (d *Device) Disable(capability renderer.Capability) {
	d.record("Disable", capability)
}

func (d *Device) DepthFunc(fn gputypes.CompareFunction) {
	d.record("DepthFunc", fn)
}

func (d *Device) DepthMask(write bool) {
	d.record("DepthMask", write)
}

func (d *Device) ColorMask(mask gputypes.ColorWriteMask) {
	d.record("ColorMask", mask)
}

func (d *Device) BlendState(state gputypes.BlendState) {
	d.record("BlendState", state)
}

func (d *Device) FrontFace(face gputypes.FrontFace) {
	d.record("FrontFace", face)
}

func (d *Device) CullFace(mode gputypes.CullMode) {
	d.record("CullFace", mode)
}

func (d *Device) StencilFunc(side renderer.StencilSide, fn gputypes.CompareFunction, ref, mask uint32) {
	d.record("StencilFunc", side, fn, ref, mask)
}

func (d *Device) StencilOp(side renderer.StencilSide, sfail, dpfail, dppass gputypes.StencilOperation) {
	d.record("StencilOp", side, sfail, dpfail, dppass)
}

func (d *Device) CreateProgram(desc renderer.ProgramDesc) (metadata.ProgramHandle, error) {
	d.record("CreateProgram", desc.Kind, desc.Label)
	if d.FailProgram != nil {
		if err := d.FailProgram(desc); err != nil {
			return 0, err
		}
	}
	h := metadata.ProgramHandle(d.handle())
	d.Programs[h] = desc
	return h, nil
}

func (d *Device) DeleteProgram(handle metadata.ProgramHandle) {
	d.record("DeleteProgram", handle)
	delete(d.Programs, handle)
}

func (d *Device) UseProgram(handle metadata.ProgramHandle) {
	d.record("UseProgram", handle)
}

func (d *Device) SetUniform(name string, value interface{}) {
	d.record("SetUniform", name, value)
	d.Uniforms[name] = value
}

func (d *Device) CreateBuffer(kind renderer.BufferKind, data interface{}) (metadata.BufferHandle, error) {
	d.record("CreateBuffer", kind)
	h := metadata.BufferHandle(d.handle())
	d.Buffers[h] = data
	return h, nil
}

func (d *Device) DeleteBuffer(handle metadata.BufferHandle) {
	d.record("DeleteBuffer", handle)
	delete(d.Buffers, handle)
}

func (d *Device) BindAttribute(attribute renderer.Attribute, handle metadata.BufferHandle, size int) {
	d.record("BindAttribute", attribute, handle, size)
}

func (d *Device) BindIndices(handle metadata.BufferHandle) {
	d.record("BindIndices", handle)
}

func (d *Device) DrawElements(topology gputypes.PrimitiveTopology, count int, format gputypes.IndexFormat) {
	d.record("DrawElements", topology, count, format)
}

func (d *Device) DrawArrays(topology gputypes.PrimitiveTopology, first, count int) {
	d.record("DrawArrays", topology, first, count)
}

func (d *Device) CreateTexture(width, height uint32, pixels []uint8) (metadata.TextureHandle, error) {
	d.record("CreateTexture", width, height)
	return metadata.TextureHandle(d.handle()), nil
}

func (d *Device) DeleteTexture(handle metadata.TextureHandle) {
	d.record("DeleteTexture", handle)
}

func (d *Device) BindTexture(unit int, handle metadata.TextureHandle) {
	d.record("BindTexture", unit, handle)
}

func (d *Device) MaxTextureUnits() int {
	return 2
}

func (d *Device) CreateRenderTarget(width, height int) (metadata.TargetHandle, error) {
	d.record("CreateRenderTarget", width, height)
	h := metadata.TargetHandle(d.handle())
	d.Targets[h] = [2]int{width, height}
	return h, nil
}

func (d *Device) DeleteRenderTarget(handle metadata.TargetHandle) {
	d.record("DeleteRenderTarget", handle)
	delete(d.Targets, handle)
}

func (d *Device) BindRenderTarget(handle metadata.TargetHandle) {
	d.record("BindRenderTarget", handle)
	d.Bound = handle
}

func (d *Device) ReadPixel(x, y int) [4]uint8 {
	d.record("ReadPixel", x, y)
	return d.Pixels[[2]int{x, y}]
}
