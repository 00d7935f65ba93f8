package software

import (
	"image"
	stdmath "math"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/math"
	"golang.org/x/image/vector"
)

// A pixel belongs to a triangle when at least half of it is covered, so
// triangles sharing an edge do not both claim it.
const coverageThreshold = 0x80

type screenVertex struct {
	x, y, z float32
	w       float32
	v       *vertex
}

func (d *Device) DrawElements(topology gputypes.PrimitiveTopology, count int, _ gputypes.IndexFormat) {
	b, ok := d.buffers[d.indices]
	if !ok || b.indices == nil {
		return
	}
	count = min(count, len(b.indices))
	elements := make([]int, count)
	for i := range elements {
		elements[i] = int(b.indices[i])
	}
	d.draw(topology, elements)
}

func (d *Device) DrawArrays(topology gputypes.PrimitiveTopology, first, count int) {
	elements := make([]int, count)
	for i := range elements {
		elements[i] = first + i
	}
	d.draw(topology, elements)
}

func (d *Device) draw(topology gputypes.PrimitiveTopology, elements []int) {
	if d.current == nil {
		return
	}
	shader := newShader(d, d.current)
	cache := make(map[int]*screenVertex)
	get := func(e int) *screenVertex {
		if sv, ok := cache[e]; ok {
			return sv
		}
		sv := d.toScreen(shader.vertex(e))
		cache[e] = sv
		return sv
	}

	switch topology {
	case gputypes.PrimitiveTopologyTriangleList:
		for i := 0; i+2 < len(elements); i += 3 {
			d.triangle(shader, get(elements[i]), get(elements[i+1]), get(elements[i+2]))
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
		for i := 0; i+2 < len(elements); i++ {
			if i%2 == 0 {
				d.triangle(shader, get(elements[i]), get(elements[i+1]), get(elements[i+2]))
			} else {
				d.triangle(shader, get(elements[i+1]), get(elements[i]), get(elements[i+2]))
			}
		}
	}
}

// toScreen maps a clip space vertex to target pixels, origin top left, and
// depth into [0, 1]. Vertices behind the eye have w <= 0 and are rejected
// by triangle.
func (d *Device) toScreen(v *vertex) *screenVertex {
	sv := &screenVertex{w: v.clip.W, v: v}
	if v.clip.W <= 0 {
		return sv
	}
	ndc := v.clip.PerspectiveDivide()
	vp := d.viewport
	height := float32(d.bound.color.Rect.Dy())
	sv.x = float32(vp[0]) + (ndc.X+1)/2*float32(vp[2])
	sv.y = height - (float32(vp[1]) + (ndc.Y+1)/2*float32(vp[3]))
	sv.z = (ndc.Z + 1) / 2
	return sv
}

func (d *Device) culled(a, b, c *screenVertex) bool {
	// signed area in screen space, where y grows downwards
	area := (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
	if area == 0 {
		return true
	}
	if !d.cull {
		return false
	}
	ccw := area < 0
	front := ccw == (d.frontFace == gputypes.FrontFaceCCW)
	switch d.cullMode {
	case gputypes.CullModeBack:
		return !front
	case gputypes.CullModeFront:
		return front
	}
	return false
}

func (d *Device) triangle(s *shader, a, b, c *screenVertex) {
	if a.w <= 0 || b.w <= 0 || c.w <= 0 || d.culled(a, b, c) {
		return
	}
	t := d.bound
	bounds := t.color.Rect
	box := image.Rect(
		int(floor(min(a.x, b.x, c.x))), int(floor(min(a.y, b.y, c.y))),
		int(ceil(max(a.x, b.x, c.x))), int(ceil(max(a.y, b.y, c.y))),
	).Intersect(bounds)
	if box.Empty() {
		return
	}

	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	z.MoveTo(a.x-ox, a.y-oy)
	z.LineTo(b.x-ox, b.y-oy)
	z.LineTo(c.x-ox, c.y-oy)
	z.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	den := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	for y := 0; y < box.Dy(); y++ {
		for x := 0; x < box.Dx(); x++ {
			if mask.Pix[y*mask.Stride+x] < coverageThreshold {
				continue
			}
			px, py := ox+float32(x)+0.5, oy+float32(y)+0.5
			l0 := clamp01(((b.y-c.y)*(px-c.x) + (c.x-b.x)*(py-c.y)) / den)
			l1 := clamp01(((c.y-a.y)*(px-c.x) + (a.x-c.x)*(py-c.y)) / den)
			l2 := clamp01(1 - l0 - l1)

			tx, ty := box.Min.X+x, box.Min.Y+y
			di := (ty-bounds.Min.Y)*bounds.Dx() + (tx - bounds.Min.X)
			depth := l0*a.z + l1*b.z + l2*c.z
			if d.depthTest && !compare(d.depthFunc, depth, t.depth[di]) {
				continue
			}

			// perspective correct weights for the varyings
			p0, p1, p2 := l0/a.w, l1/b.w, l2/c.w
			sum := p0 + p1 + p2
			color, ok := s.fragment(a.v, b.v, c.v, math.NewVec3(p0/sum, p1/sum, p2/sum))
			if !ok {
				continue
			}
			if d.depthTest && d.depthMask {
				t.depth[di] = depth
			}
			d.write(t.color, tx, ty, color)
		}
	}
}

func (d *Device) write(img *image.RGBA, x, y int, src math.Vec4) {
	i := img.PixOffset(x, y)
	px := img.Pix[i : i+4]
	if d.blend {
		dst := math.NewVec4(float32(px[0])/255, float32(px[1])/255, float32(px[2])/255, float32(px[3])/255)
		src = blend(d.blendState, src, dst)
	}
	out := [4]float32{src.X, src.Y, src.Z, src.W}
	channels := [4]gputypes.ColorWriteMask{gputypes.ColorWriteMaskRed, gputypes.ColorWriteMaskGreen, gputypes.ColorWriteMaskBlue, gputypes.ColorWriteMaskAlpha}
	for c, bit := range channels {
		if d.colorMask&bit != 0 {
			px[c] = toByte(out[c])
		}
	}
}

func blend(state gputypes.BlendState, src, dst math.Vec4) math.Vec4 {
	s := [4]float32{src.X, src.Y, src.Z, src.W}
	t := [4]float32{dst.X, dst.Y, dst.Z, dst.W}
	var out [4]float32
	for c := range out {
		component := state.Color
		if c == 3 {
			component = state.Alpha
		}
		out[c] = s[c]*factor(component.SrcFactor, s[c], t[c], src.W, dst.W) +
			t[c]*factor(component.DstFactor, s[c], t[c], src.W, dst.W)
	}
	return math.NewVec4(out[0], out[1], out[2], out[3])
}

// factor evaluates f for one channel. Constant factors are not supported and
// behave like one.
func factor(f gputypes.BlendFactor, src, dst, srcAlpha, dstAlpha float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrc:
		return src
	case gputypes.BlendFactorOneMinusSrc:
		return 1 - src
	case gputypes.BlendFactorSrcAlpha:
		return srcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - srcAlpha
	case gputypes.BlendFactorDst:
		return dst
	case gputypes.BlendFactorOneMinusDst:
		return 1 - dst
	case gputypes.BlendFactorDstAlpha:
		return dstAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dstAlpha
	case gputypes.BlendFactorSrcAlphaSaturated:
		return min(srcAlpha, 1-dstAlpha)
	}
	return 1
}

func compare(fn gputypes.CompareFunction, value, stored float32) bool {
	switch fn {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return value < stored
	case gputypes.CompareFunctionEqual:
		return value == stored
	case gputypes.CompareFunctionLessEqual:
		return value <= stored
	case gputypes.CompareFunctionGreater:
		return value > stored
	case gputypes.CompareFunctionNotEqual:
		return value != stored
	case gputypes.CompareFunctionGreaterEqual:
		return value >= stored
	}
	return true
}

func toByte(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	return math.Clamp(v, 0, 1)
}

func floor(v float32) float32 {
	return float32(stdmath.Floor(float64(v)))
}

func ceil(v float32) float32 {
	return float32(stdmath.Ceil(float64(v)))
}
