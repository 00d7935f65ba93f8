package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/anima/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newManager(t *testing.T, files map[string]string) (string, *AssetManager) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() { am.Shutdown() })
	return dir, am
}

func TestAssetManagerIndexes(t *testing.T) {
	dir, am := newManager(t, map[string]string{
		"effects/glow.wgsl": "fn glow() {}",
		"effects/rim.wgsl":  "fn rim() {}",
		"steel.amt":         `type = "phong"`,
		"notes.txt":         "ignored",
	})

	path, ok := am.Lookup("glow", resources.ResourceTypeShader)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "effects", "glow.wgsl"), path)
	_, ok = am.Lookup("glow", resources.ResourceTypeMaterial)
	assert.False(t, ok)
	_, ok = am.Lookup("notes", resources.ResourceTypeNone)
	assert.False(t, ok)

	shaders := am.Assets(resources.ResourceTypeShader)
	require.Len(t, shaders, 2)
	assert.Equal(t, "glow", AssetName(shaders[0].Path))
	assert.Equal(t, "rim", AssetName(shaders[1].Path))

	res, err := am.LoadAsset("steel", resources.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "steel", res.Name)
	assert.IsType(t, &resources.MaterialConfig{}, res.Data)
	assert.NoError(t, am.UnloadAsset(res))
	assert.NoError(t, am.UnloadAsset(nil))

	_, err = am.LoadAsset("missing", resources.ResourceTypeShader, nil)
	assert.Error(t, err)
	_, err = am.LoadPath(filepath.Join(dir, "notes.txt"), nil)
	assert.Error(t, err)
}

func TestAssetManagerWatchesChanges(t *testing.T) {
	dir, am := newManager(t, map[string]string{"glow.wgsl": "fn glow() {}"})

	path := filepath.Join(dir, "glow.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("fn glow() -> f32 { return 2.0; }"), 0o644))

	select {
	case ev := <-am.Events():
		assert.Equal(t, path, ev.Path)
		assert.Equal(t, resources.ResourceTypeShader, ev.Type)
		assert.False(t, ev.Removed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event for glow.wgsl")
	}

	// files created later are indexed too
	writeFiles(t, dir, map[string]string{"ember.png": "png"})
	assert.Eventually(t, func() bool {
		_, ok := am.Lookup("ember", resources.ResourceTypeImage)
		return ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAssetManagerShutdown(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown(), "shutdown twice is a no-op")

	_, open := <-am.Events()
	assert.False(t, open)
	assert.Error(t, am.Initialize(t.TempDir()))

	_, am = newManager(t, nil)
	require.NoError(t, am.Shutdown())
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-am.Events():
			return !open
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, resources.ResourceTypeShader, determineAssetType("a/b.wgsl"))
	assert.Equal(t, resources.ResourceTypeImage, determineAssetType("b.png"))
	assert.Equal(t, resources.ResourceTypeMaterial, determineAssetType("c.amt"))
	assert.Equal(t, resources.ResourceTypeNone, determineAssetType("d.toml"))
	assert.Equal(t, "b", AssetName("/x/a/b.wgsl"))
}
