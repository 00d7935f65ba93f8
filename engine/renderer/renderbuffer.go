package renderer

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief An off-screen colour and depth target sized to the drawing buffer.
 * Used for pick and pixel read back passes.
 */
type RenderBuffer struct {
	Label  string
	device Device
	handle metadata.TargetHandle
	width  int
	height int
	bound  bool
}

func NewRenderBuffer(device Device, label string) *RenderBuffer {
	return &RenderBuffer{device: device, Label: label}
}

// Bind makes the buffer the draw target, (re)allocating it when the drawing
// buffer size changed.
func (rb *RenderBuffer) Bind() error {
	width, height := rb.device.DrawingBufferSize()
	if rb.handle == 0 || width != rb.width || height != rb.height {
		if rb.handle != 0 {
			rb.device.DeleteRenderTarget(rb.handle)
			rb.handle = 0
		}
		handle, err := rb.device.CreateRenderTarget(width, height)
		if err != nil {
			return fmt.Errorf("render buffer %s: %w", rb.Label, err)
		}
		rb.handle, rb.width, rb.height = handle, width, height
	}
	rb.device.BindRenderTarget(rb.handle)
	rb.bound = true
	return nil
}

func (rb *RenderBuffer) Clear() {
	rb.device.Clear(ClearColorBit | ClearDepthBit)
}

func (rb *RenderBuffer) Read(x, y int) [4]uint8 {
	return rb.device.ReadPixel(x, y)
}

func (rb *RenderBuffer) Unbind() {
	if rb.bound {
		rb.device.BindRenderTarget(0)
		rb.bound = false
	}
}

// Restore forgets the lost device target; the next Bind allocates a new one
// on device.
func (rb *RenderBuffer) Restore(device Device) {
	rb.device = device
	rb.handle = 0
	rb.bound = false
}

func (rb *RenderBuffer) Destroy() {
	if rb.handle != 0 {
		rb.device.DeleteRenderTarget(rb.handle)
		rb.handle = 0
	}
}
