package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterial(t *testing.T) {
	cfg, err := ParseMaterial([]byte(`
type = "lambert"
diffuse = [0.5, 0.25, 1.0]
alpha = 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, "lambert", cfg.Type)
	assert.Equal(t, [3]float32{0.5, 0.25, 1}, cfg.Diffuse)
	assert.Equal(t, float32(0.5), cfg.Alpha)
	// untouched fields keep the white phong defaults
	assert.Equal(t, [3]float32{1, 1, 1}, cfg.Specular)
	assert.Equal(t, float32(30), cfg.Shininess)

	cfg, err = ParseMaterial(nil)
	require.NoError(t, err)
	assert.Equal(t, "phong", cfg.Type)
	assert.Equal(t, float32(1), cfg.Alpha)
}

func TestParseMaterialValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"type", `type = "toon"`},
		{"color", `diffuse = [1.5, 0, 0]`},
		{"emissive", `emissive = [0, -0.1, 0]`},
		{"alpha", `alpha = 2.0`},
		{"shininess", `shininess = -1.0`},
		{"syntax", `diffuse = [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaterial([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestMaterialLoaderNamesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copper.amt")
	require.NoError(t, os.WriteFile(path, []byte(`shininess = 64.0`), 0o644))

	res, err := (&MaterialLoader{}).Load(path, resources.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "copper", res.Name)
	assert.Equal(t, path, res.FullPath)
	cfg := res.Data.(*resources.MaterialConfig)
	assert.Equal(t, float32(64), cfg.Shininess)

	require.NoError(t, os.WriteFile(path, []byte("name = \"bronze\"\n"), 0o644))
	res, err = (&MaterialLoader{}).Load(path, resources.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "bronze", res.Name)

	_, err = (&MaterialLoader{}).Load(filepath.Join(dir, "missing.amt"), resources.ResourceTypeMaterial, nil)
	assert.Error(t, err)
}

func TestShaderLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glow.wgsl")
	source := "fn glow() -> f32 { return 1.0; }\n"
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	res, err := (&ShaderLoader{}).Load(path, resources.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, "glow", res.Name)
	assert.Equal(t, source, res.Data)
	assert.Equal(t, uint64(len(source)), res.DataSize)
}

func twoRows() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func TestImageData(t *testing.T) {
	data := ImageData(twoRows(), false)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	require.Len(t, data.Pixels, 16)
	assert.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[0:4])
	assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[8:12])

	flipped := ImageData(twoRows(), true)
	assert.Equal(t, []uint8{0, 0, 255, 255}, flipped.Pixels[0:4])
	assert.Equal(t, []uint8{255, 0, 0, 255}, flipped.Pixels[8:12])
}

func TestTextureLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, twoRows()))
	require.NoError(t, f.Close())

	res, err := (&TextureLoader{}).Load(path, resources.ResourceTypeImage, &resources.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	assert.Equal(t, "rows", res.Name)
	data := res.Data.(*resources.ImageResourceData)
	assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[0:4])

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))
	_, err = (&TextureLoader{}).Load(bad, resources.ResourceTypeImage, nil)
	assert.Error(t, err)
}
