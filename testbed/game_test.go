package testbed

import (
	"testing"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passCompiler struct{}

func (passCompiler) Compile(label, source string) ([]uint32, error) {
	return []uint32{0x07230203}, nil
}

func TestGameRuns(t *testing.T) {
	config := core.DefaultEngineConfig()
	config.Width, config.Height = 32, 24
	config.LogLevel = "warn"

	tg := NewTestGame(config)
	e, err := engine.New(tg.Game)
	require.NoError(t, err)
	e.Compiler = passCompiler{}
	require.NoError(t, e.Initialize())

	rs := tg.SystemManager.RendererSystem
	for _, id := range []string{FloorID, CubeID, GlassID} {
		_, ok := rs.Object(id)
		assert.True(t, ok, id)
	}
	// the two cubes share one geometry
	cube, _ := rs.Object(CubeID)
	glass, _ := rs.Object(GlassID)
	assert.Same(t, cube.State.Geometry, glass.State.Geometry)
	assert.True(t, glass.Transparent())

	e.Platform().MaxFrames = 2
	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), rs.FrameCount(), "the cubes spin every frame")

	objects := rs.Objects()
	require.Len(t, objects, 3)
	assert.Equal(t, GlassID, objects[2].ID, "transparent objects draw last")

	require.NoError(t, e.Shutdown())
}
