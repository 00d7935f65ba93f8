package metadata

import (
	"strings"

	"github.com/spaghettifunk/anima/engine/math"
)

type LightType int

const (
	LightTypeAmbient LightType = iota
	LightTypeDirectional
	LightTypePoint
	LightTypeSpot
)

/** @brief The coordinate space a light's position and direction are given in. */
type LightSpace int

const (
	LightSpaceView LightSpace = iota
	LightSpaceWorld
)

type Light struct {
	Type      LightType
	Color     math.Vec3
	Intensity float32
	Space     LightSpace
	/** @brief Used by directional and spot lights. */
	Dir math.Vec3
	/** @brief Used by point and spot lights. */
	Pos math.Vec3
	/** @brief Constant, linear and quadratic attenuation for point and spot lights. */
	Attenuation math.Vec3
}

func NewAmbientLight(color math.Vec3, intensity float32) Light {
	return Light{Type: LightTypeAmbient, Color: color, Intensity: intensity}
}

func NewDirLight(dir, color math.Vec3, intensity float32, space LightSpace) Light {
	return Light{Type: LightTypeDirectional, Dir: dir, Color: color, Intensity: intensity, Space: space}
}

func NewPointLight(pos, color math.Vec3, intensity float32, space LightSpace) Light {
	return Light{
		Type:        LightTypePoint,
		Pos:         pos,
		Color:       color,
		Intensity:   intensity,
		Space:       space,
		Attenuation: math.NewVec3(1, 0, 0),
	}
}

type Lights struct {
	StateBase
	Lights []Light
}

func NewLights(lights ...Light) *Lights {
	return &Lights{Lights: lights}
}

// Hash encodes the type and space of every light, in order.
func (l *Lights) Hash() string {
	var b strings.Builder
	for _, light := range l.Lights {
		switch light.Type {
		case LightTypeAmbient:
			b.WriteString("a")
		case LightTypeDirectional:
			b.WriteString("d")
		case LightTypePoint:
			b.WriteString("p")
		case LightTypeSpot:
			b.WriteString("s")
		}
		if light.Space == LightSpaceWorld {
			b.WriteString("w")
		}
		b.WriteString(",")
	}
	return b.String()
}

// Ambient returns colour * intensity of the last ambient light, if any.
// Earlier ambient lights are ignored.
func (l *Lights) Ambient() (math.Vec3, bool) {
	var ambient math.Vec3
	found := false
	for _, light := range l.Lights {
		if light.Type == LightTypeAmbient {
			ambient = light.Color.MulScalar(light.Intensity)
			found = true
		}
	}
	return ambient, found
}
