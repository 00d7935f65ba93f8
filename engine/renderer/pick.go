package renderer

import "github.com/spaghettifunk/anima/engine/math"

// EncodePickColor packs v into RGBA bytes, least significant byte in red.
func EncodePickColor(v int) [4]uint8 {
	return [4]uint8{uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)}
}

// DecodePickColor is the inverse of EncodePickColor. Object picking keeps
// alpha opaque, so withAlpha is false for that pass.
func DecodePickColor(rgba [4]uint8, withAlpha bool) int {
	v := int(rgba[0]) | int(rgba[1])<<8 | int(rgba[2])<<16
	if withAlpha {
		v |= int(rgba[3]) << 24
	}
	return v
}

// PickColorVec4 converts encoded bytes to the normalised colour a shader writes.
func PickColorVec4(rgba [4]uint8) math.Vec4 {
	return math.NewVec4(float32(rgba[0])/255, float32(rgba[1])/255, float32(rgba[2])/255, float32(rgba[3])/255)
}
