package chunks

import (
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type phongMaterialChunk struct {
	material *metadata.PhongMaterial
}

func newPhongMaterialChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &phongMaterialChunk{material: state.(*metadata.PhongMaterial)}
}

func (c *phongMaterialChunk) Draw(ctx *renderer.FrameContext) {
	d := ctx.Device
	m := c.material
	d.SetUniform(renderer.UniformMaterialAmbient, m.Ambient)
	d.SetUniform(renderer.UniformMaterialDiffuse, m.Diffuse)
	d.SetUniform(renderer.UniformMaterialSpecular, m.Specular)
	d.SetUniform(renderer.UniformMaterialEmissive, m.Emissive)
	d.SetUniform(renderer.UniformMaterialShininess, m.Shininess)
	d.SetUniform(renderer.UniformMaterialAlpha, m.Alpha)
	if m.DiffuseMap != nil {
		bindTexture(ctx, renderer.UniformDiffuseMap, m.DiffuseMap)
	}
}

// Restore drops the texture handle of the lost device; the next draw uploads again.
func (c *phongMaterialChunk) Restore(renderer.Device) {
	if c.material.DiffuseMap != nil {
		c.material.DiffuseMap.Handle = 0
	}
}

type lambertMaterialChunk struct {
	material *metadata.LambertMaterial
}

func newLambertMaterialChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &lambertMaterialChunk{material: state.(*metadata.LambertMaterial)}
}

func (c *lambertMaterialChunk) Draw(ctx *renderer.FrameContext) {
	d := ctx.Device
	m := c.material
	d.SetUniform(renderer.UniformMaterialAmbient, m.Ambient)
	d.SetUniform(renderer.UniformMaterialDiffuse, m.Color)
	d.SetUniform(renderer.UniformMaterialEmissive, m.Emissive)
	d.SetUniform(renderer.UniformMaterialAlpha, m.Alpha)
}

// bindTexture uploads texture on first use and binds it to the next free unit.
func bindTexture(ctx *renderer.FrameContext, uniform string, texture *metadata.Texture) {
	d := ctx.Device
	if texture.Handle == 0 {
		handle, err := d.CreateTexture(texture.Width, texture.Height, texture.Pixels)
		if err != nil {
			core.LogError("failed to upload texture %d: %s", texture.StateID(), err.Error())
			return
		}
		texture.Handle = handle
	}
	unit := ctx.TextureUnit
	d.BindTexture(unit, texture.Handle)
	d.SetUniform(uniform, int32(unit))
	ctx.TextureUnit = (unit + 1) % d.MaxTextureUnits()
	ctx.Stats.BindTexture++
}
