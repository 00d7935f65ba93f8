package systems

import (
	"testing"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraSystem(t *testing.T) {
	_, err := NewCameraSystem(&CameraSystemConfig{})
	assert.ErrorIs(t, err, core.ErrConfig)

	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 1})
	require.NoError(t, err)

	world, err := cs.Acquire("world")
	require.NoError(t, err)
	again, err := cs.Acquire("world")
	require.NoError(t, err)
	assert.Same(t, world, again)
	assert.Equal(t, uint16(2), cs.Cameras["world"].ReferenceCount)

	_, err = cs.Acquire("ui")
	assert.Error(t, err, "only one named camera fits")

	def, err := cs.Acquire(components.DEFAULT_CAMERA_NAME)
	require.NoError(t, err)
	assert.Same(t, cs.GetDefault(), def)
	assert.NotContains(t, cs.Cameras, components.DEFAULT_CAMERA_NAME)

	cs.Release("world")
	assert.Contains(t, cs.Cameras, "world")
	cs.Release("world")
	assert.NotContains(t, cs.Cameras, "world")
	cs.Release("world")
	cs.Release(components.DEFAULT_CAMERA_NAME)

	require.NoError(t, cs.Shutdown())
	assert.Empty(t, cs.Cameras)
}

func TestCameraSystemFollowsCanvas(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 4})
	require.NoError(t, err)

	world, err := cs.Acquire("world")
	require.NoError(t, err)
	assert.Equal(t, float32(1), world.Aspect)

	cs.Resize(0, 10)
	assert.Equal(t, float32(1), world.Aspect, "empty canvas is ignored")

	cs.Resize(200, 100)
	assert.Equal(t, float32(2), world.Aspect)
	assert.Equal(t, float32(2), cs.GetDefault().Aspect)
	assert.True(t, world.IsDirty)

	ui, err := cs.Acquire("ui")
	require.NoError(t, err)
	assert.Equal(t, float32(2), ui.Aspect)
}
