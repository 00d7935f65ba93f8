package shadergen

import (
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// FeaturesOf derives the program features of an object from the states that
// take part in its hash. Two contexts with equal hashes yield equal features.
func FeaturesOf(rc *metadata.RenderContext) renderer.ProgramFeatures {
	var f renderer.ProgramFeatures
	if g := rc.Geometry; g != nil {
		f.Normals = len(g.Normals) > 0
		f.UV = len(g.UV) > 0
		f.Colors = len(g.Colors) > 0
	}
	if rc.Material != nil {
		f.Material = rc.Material.MaterialType()
		if phong, ok := rc.Material.(*metadata.PhongMaterial); ok {
			f.DiffuseMap = phong.DiffuseMap != nil && f.UV
		}
	}
	if rc.Lights != nil {
		for _, light := range rc.Lights.Lights {
			if light.Type == metadata.LightTypeAmbient {
				continue
			}
			f.Lights = append(f.Lights, renderer.LightFeature{
				Type:  light.Type,
				World: light.Space == metadata.LightSpaceWorld,
			})
		}
	}
	if rc.Clips != nil {
		f.Clips = len(rc.Clips.Clips)
	}
	if rc.Billboard != nil && rc.Billboard.Active {
		f.Billboard = true
		f.SphericalBillboard = rc.Billboard.Spherical
	}
	if rc.Stationary != nil {
		f.Stationary = rc.Stationary.Active
	}
	if rc.Shader != nil {
		f.Custom = rc.Shader.Custom()
	}
	return f
}
