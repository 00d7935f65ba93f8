package metadata

import "github.com/spaghettifunk/anima/engine/math"

/** @brief Material types. The type selects the chunk applied at the material slot. */
const (
	MaterialTypePhong   = "PhongMaterial"
	MaterialTypeLambert = "LambertMaterial"
)

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as colour, shininess and more.
 */
type Material interface {
	State
	Hasher
	MaterialType() string
}

type PhongMaterial struct {
	StateBase
	Ambient  math.Vec3
	Diffuse  math.Vec3
	Specular math.Vec3
	Emissive math.Vec3
	/** @brief Determines how concentrated the specular lighting is. */
	Shininess float32
	Alpha     float32
	/** @brief Optional diffuse texture, sampled with the geometry uv. */
	DiffuseMap *Texture
}

func NewPhongMaterial(diffuse math.Vec3) *PhongMaterial {
	return &PhongMaterial{
		Ambient:   math.NewVec3(1, 1, 1),
		Diffuse:   diffuse,
		Specular:  math.NewVec3(1, 1, 1),
		Shininess: 30,
		Alpha:     1,
	}
}

func (m *PhongMaterial) MaterialType() string {
	return MaterialTypePhong
}

func (m *PhongMaterial) Hash() string {
	if m.DiffuseMap != nil {
		return "phong,diffuseMap"
	}
	return "phong"
}

type LambertMaterial struct {
	StateBase
	Ambient  math.Vec3
	Color    math.Vec3
	Emissive math.Vec3
	Alpha    float32
}

func NewLambertMaterial(color math.Vec3) *LambertMaterial {
	return &LambertMaterial{
		Ambient: math.NewVec3(1, 1, 1),
		Color:   color,
		Alpha:   1,
	}
}

func (m *LambertMaterial) MaterialType() string {
	return MaterialTypeLambert
}

func (m *LambertMaterial) Hash() string {
	return "lambert"
}
