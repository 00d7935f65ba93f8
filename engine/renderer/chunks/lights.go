package chunks

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief Uploads the ambient colour and one indexed uniform set per
 * non-ambient light. Ambient lights take no index; the last one wins.
 */
type lightsChunk struct {
	lights *metadata.Lights
}

func newLightsChunk(_ *metadata.Program, state metadata.State) interface{} {
	return &lightsChunk{lights: state.(*metadata.Lights)}
}

func (c *lightsChunk) Draw(ctx *renderer.FrameContext) {
	d := ctx.Device
	ambient, _ := c.lights.Ambient()
	d.SetUniform(renderer.UniformAmbientColor, ambient)

	i := 0
	for _, light := range c.lights.Lights {
		if light.Type == metadata.LightTypeAmbient {
			continue
		}
		d.SetUniform(renderer.IndexedUniform(renderer.UniformLightColor, i), light.Color.MulScalar(light.Intensity))
		switch light.Type {
		case metadata.LightTypeDirectional:
			d.SetUniform(renderer.IndexedUniform(renderer.UniformLightDir, i), light.Dir)
		case metadata.LightTypePoint:
			d.SetUniform(renderer.IndexedUniform(renderer.UniformLightPos, i), light.Pos)
			d.SetUniform(renderer.IndexedUniform(renderer.UniformLightAttenuation, i), light.Attenuation)
		case metadata.LightTypeSpot:
			d.SetUniform(renderer.IndexedUniform(renderer.UniformLightPos, i), light.Pos)
			d.SetUniform(renderer.IndexedUniform(renderer.UniformLightDir, i), light.Dir)
			d.SetUniform(renderer.IndexedUniform(renderer.UniformLightAttenuation, i), light.Attenuation)
		}
		i++
	}
}
