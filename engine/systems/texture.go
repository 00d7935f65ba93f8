package systems

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/assets/loaders"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/resources"
	xdraw "golang.org/x/image/draw"
)

// DefaultTextureName names the checkerboard used until an image is loaded.
const DefaultTextureName = "default"

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Images wider or taller than this are scaled down on load. Zero disables scaling. */
	MaxTextureSize uint32
}

type textureReference struct {
	referenceCount uint32
	autoRelease    bool
	texture        *metadata.Texture
}

/**
 * @brief Loads images into textures by name. Decoding runs on the job system;
 * until it finishes the texture shows the default checkerboard.
 */
type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *metadata.Texture
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*textureReference
	// OnLoaded runs on the frame loop after a texture received new pixels.
	OnLoaded func(name string, texture *metadata.Texture)
	// sub systems
	jobSystem    *JobSystem
	assetManager *assets.AssetManager
	device       renderer.Device
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, am *assets.AssetManager, device renderer.Device) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0: %w", core.ErrConfig)
		core.LogError("%s", err)
		return nil, err
	}

	return &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[string]*textureReference),
		DefaultTexture:         newCheckerTexture(16, 4),
		jobSystem:              js,
		assetManager:           am,
		device:                 device,
	}, nil
}

// newCheckerTexture builds a white and magenta checkerboard of size x size
// pixels with squares of cell pixels.
func newCheckerTexture(size, cell uint32) *metadata.Texture {
	pixels := make([]uint8, size*size*4)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			i := (y*size + x) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 255, 255, 255, 255
			if ((x/cell)+(y/cell))%2 == 1 {
				pixels[i+1] = 0
			}
		}
	}
	return metadata.NewTexture(size, size, pixels)
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for name, ref := range ts.RegisteredTextureTable {
		ts.DestroyTexture(ref.texture)
		delete(ts.RegisteredTextureTable, name)
	}
	ts.DestroyTexture(ts.DefaultTexture)
	return nil
}

/**
 * @brief Acquires the texture called name, loading it if needed. The returned
 * texture is usable at once and receives its pixels once loading finishes.
 *
 * @param name The image asset name, without extension.
 * @param autoRelease Destroy the texture when the last reference is released.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	if name == DefaultTextureName {
		core.LogWarn("func texture system Acquire called for default texture. Use GetDefaultTexture for texture 'default'")
		return ts.DefaultTexture, nil
	}
	if ref, ok := ts.RegisteredTextureTable[name]; ok {
		ref.referenceCount++
		return ref.texture, nil
	}
	if uint32(len(ts.RegisteredTextureTable)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("func texture system Acquire failed to obtain a new texture slot for '%s'", name)
		core.LogError("%s", err)
		return nil, err
	}
	d := ts.DefaultTexture
	texture := metadata.NewTexture(d.Width, d.Height, d.Pixels)
	ts.RegisteredTextureTable[name] = &textureReference{
		referenceCount: 1,
		autoRelease:    autoRelease,
		texture:        texture,
	}
	if err := ts.LoadTexture(name, texture); err != nil {
		delete(ts.RegisteredTextureTable, name)
		core.LogError("%s", err)
		return nil, err
	}
	return texture, nil
}

func (ts *TextureSystem) Release(name string) {
	// Ignore release requests for the default texture.
	if name == DefaultTextureName {
		return
	}
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogError("texture_system_release failed to release texture '%s' properly.", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		ts.DestroyTexture(ref.texture)
		delete(ts.RegisteredTextureTable, name)
		core.LogDebug("texture '%s' released", name)
	}
}

func (ts *TextureSystem) GetDefaultTexture() *metadata.Texture {
	return ts.DefaultTexture
}

// Reload queues loading the named texture again, if it is registered.
func (ts *TextureSystem) Reload(name string) error {
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		return nil
	}
	return ts.LoadTexture(name, ref.texture)
}

/**
 * @brief Kicks off a texture loading job. The job only decodes from disk to
 * CPU memory; the device copy is dropped on completion so the material chunk
 * uploads the new pixels on its next draw.
 */
func (ts *TextureSystem) LoadTexture(textureName string, texture *metadata.Texture) error {
	return ts.jobSystem.Submit(JobTask{
		Name: "texture " + textureName,
		Start: func() (interface{}, error) {
			return ts.loadImage(textureName)
		},
		OnComplete: func(result interface{}) {
			data := result.(*resources.ImageResourceData)
			ts.DestroyTexture(texture)
			texture.Width = data.Width
			texture.Height = data.Height
			texture.Pixels = data.Pixels
			core.LogDebug("Successfully loaded texture '%s'.", textureName)
			if ts.OnLoaded != nil {
				ts.OnLoaded(textureName, texture)
			}
		},
		OnFailure: func(err error) {
			core.LogError("Failed to load texture '%s': %s", textureName, err.Error())
		},
	})
}

func (ts *TextureSystem) loadImage(name string) (*resources.ImageResourceData, error) {
	resource, err := ts.assetManager.LoadAsset(name, resources.ResourceTypeImage, &resources.ImageResourceParams{
		FlipY: true,
	})
	if err != nil {
		return nil, err
	}
	defer ts.assetManager.UnloadAsset(resource)

	data, ok := resource.Data.(*resources.ImageResourceData)
	if !ok {
		return nil, fmt.Errorf("failed to type cast resource data of '%s' to `*resources.ImageResourceData`", name)
	}
	return ScaleImage(data, ts.Config.MaxTextureSize), nil
}

/**
 * @brief Scales data down so neither side exceeds maxSize, keeping the aspect
 * ratio. Data already within bounds is returned unchanged.
 */
func ScaleImage(data *resources.ImageResourceData, maxSize uint32) *resources.ImageResourceData {
	if maxSize == 0 || (data.Width <= maxSize && data.Height <= maxSize) {
		return data
	}
	w, h := data.Width, data.Height
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	src := &image.RGBA{
		Pix:    data.Pixels,
		Stride: int(data.Width) * 4,
		Rect:   image.Rect(0, 0, int(data.Width), int(data.Height)),
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return loaders.ImageData(dst, false)
}

// DestroyTexture frees the device copy of texture. The pixels are kept.
func (ts *TextureSystem) DestroyTexture(texture *metadata.Texture) {
	if texture.Handle != 0 {
		ts.device.DeleteTexture(texture.Handle)
		texture.Handle = 0
	}
}
