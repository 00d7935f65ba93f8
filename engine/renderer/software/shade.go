package software

import (
	stdmath "math"

	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type vertex struct {
	clip   math.Vec4
	world  math.Vec3
	view   math.Vec3
	normal math.Vec3
	uv     math.Vec2
	color  math.Vec4
	pick   math.Vec4
}

type attributeData struct {
	floats []float32
	size   int
}

// fetch reads element e, filling missing components from def.
func (a attributeData) fetch(e int, def [4]float32) [4]float32 {
	out := def
	if a.size == 0 {
		return out
	}
	base := e * a.size
	for c := 0; c < a.size && c < 4; c++ {
		if base+c < len(a.floats) {
			out[c] = a.floats[base+c]
		}
	}
	return out
}

/**
 * @brief Emulates a program for one draw call. Uniforms are read once, the
 * vertex stage runs per element and the fragment stage per covered pixel.
 */
type shader struct {
	d        *Device
	p        *program
	features renderer.ProgramFeatures

	model       math.Mat4
	modelNormal math.Mat4
	view        math.Mat4
	viewNormal  math.Mat4
	modelView   math.Mat4
	proj        math.Mat4

	positions attributeData
	normals   attributeData
	uvs       attributeData
	colors    attributeData
	picks     attributeData
}

func newShader(d *Device, p *program) *shader {
	s := &shader{
		d:           d,
		p:           p,
		features:    p.desc.Features,
		model:       p.mat4(renderer.UniformModelMatrix),
		modelNormal: p.mat4(renderer.UniformModelNormalMatrix),
		view:        p.mat4(renderer.UniformViewMatrix),
		viewNormal:  p.mat4(renderer.UniformViewNormalMatrix),
		proj:        p.mat4(renderer.UniformProjMatrix),
		positions:   d.attribute(renderer.AttributePosition),
		normals:     d.attribute(renderer.AttributeNormal),
		uvs:         d.attribute(renderer.AttributeUV),
		colors:      d.attribute(renderer.AttributeColor),
		picks:       d.attribute(renderer.AttributePickColor),
	}
	view := s.view
	if s.features.Stationary {
		view.Data[12], view.Data[13], view.Data[14], view.Data[15] = 0, 0, 0, 1
	}
	mv := s.model.Mul(view)
	if s.features.Billboard {
		mv.Data[0], mv.Data[1], mv.Data[2] = 1, 0, 0
		if s.features.SphericalBillboard {
			mv.Data[4], mv.Data[5], mv.Data[6] = 0, 1, 0
		}
		mv.Data[8], mv.Data[9], mv.Data[10] = 0, 0, 1
	}
	s.modelView = mv
	return s
}

func (d *Device) attribute(attr renderer.Attribute) attributeData {
	a, ok := d.attributes[attr]
	if !ok {
		return attributeData{}
	}
	b, ok := d.buffers[a.handle]
	if !ok {
		return attributeData{}
	}
	return attributeData{floats: b.floats, size: a.size}
}

func (s *shader) vertex(e int) *vertex {
	p := s.positions.fetch(e, [4]float32{0, 0, 0, 1})
	pos := math.NewVec3(p[0], p[1], p[2])
	v := &vertex{world: pos.Transform(s.model)}
	view := pos.ToVec4(1).Transform(s.modelView)
	v.view = view.ToVec3()
	v.clip = view.Transform(s.proj)

	v.normal = math.NewVec3(0, 0, 1)
	if s.features.Normals {
		n := s.normals.fetch(e, [4]float32{})
		v.normal = math.NewVec3(n[0], n[1], n[2]).TransformDirection(s.modelNormal).TransformDirection(s.viewNormal).Normalized()
	}
	uv := s.uvs.fetch(e, [4]float32{})
	v.uv = math.NewVec2(uv[0], uv[1])
	c := s.colors.fetch(e, [4]float32{1, 1, 1, 1})
	v.color = math.NewVec4(c[0], c[1], c[2], c[3])
	pk := s.picks.fetch(e, [4]float32{})
	v.pick = math.NewVec4(pk[0], pk[1], pk[2], pk[3])
	return v
}

// fragment shades the point with barycentric weights w. It reports false
// when the fragment is discarded.
func (s *shader) fragment(a, b, c *vertex, w math.Vec3) (math.Vec4, bool) {
	world := a.world.MulScalar(w.X).Add(b.world.MulScalar(w.Y)).Add(c.world.MulScalar(w.Z))
	if s.clipped(world) {
		return math.Vec4{}, false
	}
	switch s.p.desc.Kind {
	case metadata.ProgramKindPickObject:
		return s.p.vec4(renderer.UniformPickColor, math.Vec4{}), true
	case metadata.ProgramKindPickPrimitive:
		// every vertex of a triangle carries the same colour
		return a.pick, true
	}
	view := a.view.MulScalar(w.X).Add(b.view.MulScalar(w.Y)).Add(c.view.MulScalar(w.Z))
	normal := a.normal.MulScalar(w.X).Add(b.normal.MulScalar(w.Y)).Add(c.normal.MulScalar(w.Z)).Normalized()
	uv := a.uv.MulScalar(w.X).Add(b.uv.MulScalar(w.Y)).Add(c.uv.MulScalar(w.Z))
	color := math.NewVec4(
		a.color.X*w.X+b.color.X*w.Y+c.color.X*w.Z,
		a.color.Y*w.X+b.color.Y*w.Y+c.color.Y*w.Z,
		a.color.Z*w.X+b.color.Z*w.Y+c.color.Z*w.Z,
		a.color.W*w.X+b.color.W*w.Y+c.color.W*w.Z,
	)
	return s.shade(view, normal, uv, color), true
}

func (s *shader) clipped(world math.Vec3) bool {
	if s.features.Clips == 0 || !s.p.boolean(renderer.UniformClippable, true) {
		return false
	}
	for i := 0; i < s.features.Clips; i++ {
		mode := metadata.ClipMode(s.p.i32(renderer.IndexedUniform(renderer.UniformClipMode, i), 0))
		pos := s.p.vec3(renderer.IndexedUniform(renderer.UniformClipPos, i), math.Vec3{})
		dir := s.p.vec3(renderer.IndexedUniform(renderer.UniformClipDir, i), math.Vec3{})
		dist := world.Sub(pos).Dot(dir)
		if (mode == metadata.ClipModeOutside && dist > 0) || (mode == metadata.ClipModeInside && dist < 0) {
			return true
		}
	}
	return false
}

func (s *shader) shade(viewPos, normal math.Vec3, uv math.Vec2, vertexColor math.Vec4) math.Vec4 {
	p := s.p
	f := s.features
	diffuse := p.vec3(renderer.UniformMaterialDiffuse, math.NewVec3One()).Mul(vertexColor.ToVec3())
	if f.DiffuseMap {
		diffuse = diffuse.Mul(s.sample(int(p.i32(renderer.UniformDiffuseMap, 0)), uv))
	}
	emissive := p.vec3(renderer.UniformMaterialEmissive, math.Vec3{})

	var out math.Vec3
	if f.Material != "" && f.Normals {
		out = p.vec3(renderer.UniformAmbientColor, math.Vec3{}).Mul(p.vec3(renderer.UniformMaterialAmbient, math.Vec3{})).Mul(diffuse)
		eye := viewPos.MulScalar(-1).Normalized()
		for i, light := range f.Lights {
			lightColor := p.vec3(renderer.IndexedUniform(renderer.UniformLightColor, i), math.Vec3{})
			var l math.Vec3
			attenuation := float32(1)
			if light.Type == metadata.LightTypeDirectional {
				dir := p.vec3(renderer.IndexedUniform(renderer.UniformLightDir, i), math.Vec3{})
				if light.World {
					dir = dir.TransformDirection(s.view)
				}
				l = dir.MulScalar(-1).Normalized()
			} else {
				pos := p.vec3(renderer.IndexedUniform(renderer.UniformLightPos, i), math.Vec3{})
				if light.World {
					pos = pos.Transform(s.view)
				}
				toLight := pos.Sub(viewPos)
				dist := toLight.Length()
				l = toLight.Normalized()
				k := p.vec3(renderer.IndexedUniform(renderer.UniformLightAttenuation, i), math.NewVec3(1, 0, 0))
				if den := k.X + k.Y*dist + k.Z*dist*dist; den > 0 {
					attenuation = 1 / den
				}
			}
			ndl := max(normal.Dot(l), 0)
			out = out.Add(lightColor.Mul(diffuse).MulScalar(ndl * attenuation))
			if f.Material == metadata.MaterialTypePhong {
				h := l.Add(eye).Normalized()
				shininess := p.f32(renderer.UniformMaterialShininess, 30)
				spec := float32(stdmath.Pow(float64(max(normal.Dot(h), 0)), float64(shininess)))
				specular := p.vec3(renderer.UniformMaterialSpecular, math.Vec3{})
				out = out.Add(lightColor.Mul(specular).MulScalar(spec * attenuation))
			}
		}
		out = out.Add(emissive)
	} else {
		out = diffuse.Add(emissive)
	}
	alpha := p.f32(renderer.UniformMaterialAlpha, 1) * vertexColor.W
	return out.ToVec4(alpha)
}

// sample reads the texture bound to unit with nearest filtering and repeat wrapping.
func (s *shader) sample(unit int, uv math.Vec2) math.Vec3 {
	if unit < 0 || unit >= len(s.d.units) {
		return math.NewVec3One()
	}
	tex, ok := s.d.textures[s.d.units[unit]]
	if !ok {
		return math.NewVec3One()
	}
	u := uv.X - floor(uv.X)
	v := uv.Y - floor(uv.Y)
	x := min(int(u*float32(tex.width)), tex.width-1)
	y := min(int(v*float32(tex.height)), tex.height-1)
	i := (y*tex.width + x) * 4
	return math.NewVec3(float32(tex.pixels[i])/255, float32(tex.pixels[i+1])/255, float32(tex.pixels[i+2])/255)
}

func (p *program) mat4(name string) math.Mat4 {
	if m, ok := p.uniforms[name].(math.Mat4); ok {
		return m
	}
	return math.NewMat4Identity()
}

func (p *program) vec3(name string, def math.Vec3) math.Vec3 {
	switch v := p.uniforms[name].(type) {
	case math.Vec3:
		return v
	case math.Vec4:
		return v.ToVec3()
	}
	return def
}

func (p *program) vec4(name string, def math.Vec4) math.Vec4 {
	switch v := p.uniforms[name].(type) {
	case math.Vec4:
		return v
	case math.Vec3:
		return v.ToVec4(1)
	}
	return def
}

func (p *program) f32(name string, def float32) float32 {
	switch v := p.uniforms[name].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int32:
		return float32(v)
	}
	return def
}

func (p *program) i32(name string, def int32) int32 {
	switch v := p.uniforms[name].(type) {
	case int32:
		return v
	case int:
		return int32(v)
	}
	return def
}

func (p *program) boolean(name string, def bool) bool {
	if v, ok := p.uniforms[name].(bool); ok {
		return v
	}
	return def
}
