package systems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderSystem(t *testing.T) {
	dir, am := assetDir(t, map[string][]byte{"effects/glow.wgsl": []byte("// v1")})
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 2}, am)
	require.NoError(t, err)

	glow, err := ss.GetShader("glow")
	require.NoError(t, err)
	path := filepath.Join(dir, "effects", "glow.wgsl")
	assert.Equal(t, path, glow.Path)
	assert.Equal(t, "// v1", glow.Source)
	assert.True(t, glow.Custom())

	again, err := ss.GetShader("glow")
	require.NoError(t, err)
	assert.Same(t, glow, again)

	hash := glow.Hash()
	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	changed, err := ss.Reload(path)
	require.NoError(t, err)
	assert.Equal(t, []*metadata.Shader{glow}, changed)
	assert.Equal(t, "// v2", glow.Source)
	assert.NotEqual(t, hash, glow.Hash())

	changed, err = ss.Reload(path)
	require.NoError(t, err)
	assert.Empty(t, changed, "source did not change")

	inline, err := ss.CreateShader("inline", "// inline")
	require.NoError(t, err)
	assert.Empty(t, inline.Path)
	_, err = ss.CreateShader("inline", "// again")
	assert.Error(t, err)

	_, err = ss.GetShader("missing")
	assert.Error(t, err, "the system is full")

	require.NoError(t, ss.Shutdown())
	assert.Empty(t, ss.Lookup)
}

func TestShaderSystemMissingAsset(t *testing.T) {
	_, am := assetDir(t, nil)
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 2}, am)
	require.NoError(t, err)
	_, err = ss.GetShader("missing")
	assert.Error(t, err)

	_, err = NewShaderSystem(&ShaderSystemConfig{}, am)
	assert.ErrorIs(t, err, core.ErrConfig)
}
