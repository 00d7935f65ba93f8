package loaders

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima/engine/resources"
)

// TextureLoader decodes images into RGBA8 pixels.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	// Open and decode the texture image file
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	flipY := false
	if p, ok := params.(*resources.ImageResourceParams); ok && p != nil {
		flipY = p.FlipY
	}
	data := ImageData(img, flipY)
	return &resources.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(*resources.Resource) error {
	return nil
}

// ImageData converts img to tightly packed RGBA8 rows.
func ImageData(img image.Image, flipY bool) *resources.ImageResourceData {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	pixels := rgba.Pix
	if flipY {
		stride := rgba.Stride
		pixels = make([]uint8, len(rgba.Pix))
		for y := 0; y < b.Dy(); y++ {
			copy(pixels[y*stride:(y+1)*stride], rgba.Pix[(b.Dy()-1-y)*stride:(b.Dy()-y)*stride])
		}
	}
	return &resources.ImageResourceData{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pixels: pixels,
	}
}
