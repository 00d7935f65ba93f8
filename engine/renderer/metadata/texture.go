package metadata

/**
 * @brief An RGBA8 image sampled by materials. Uploaded lazily by the
 * material chunk that binds it.
 */
type Texture struct {
	StateBase
	Width  uint32
	Height uint32
	Pixels []uint8
	Handle TextureHandle
}

func NewTexture(width, height uint32, pixels []uint8) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}
