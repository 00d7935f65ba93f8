package systems

import (
	"testing"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litQuadContext() *metadata.RenderContext {
	rc := metadata.NewRenderContext()
	rc.Geometry = fullQuad()
	return rc
}

func TestNewProgramSystemValidation(t *testing.T) {
	_, err := NewProgramSystem(&ProgramSystemConfig{MaxIdlePrograms: -1}, nil, nil)
	assert.ErrorIs(t, err, core.ErrConfig)

	ps, err := NewProgramSystem(&ProgramSystemConfig{}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, ps.compiler, "naga is the default compiler")
}

func TestProgramSystemGetAndPut(t *testing.T) {
	device := renderertest.NewDevice(4, 4)
	compiler := &fakeCompiler{}
	ps, err := NewProgramSystem(&ProgramSystemConfig{MaxIdlePrograms: 2}, device, compiler)
	require.NoError(t, err)

	rc := litQuadContext()
	hash := rc.Hash()
	p, err := ps.Get(hash, rc)
	require.NoError(t, err)
	assert.True(t, p.Valid())
	assert.Equal(t, hash, p.Hash)
	for _, v := range p.Variants() {
		assert.True(t, v.Compiled)
		assert.True(t, v.Linked)
		assert.NotZero(t, v.Handle)
		assert.NotEmpty(t, v.Source)
		assert.Equal(t, []uint32{0x07230203}, v.Code)
	}
	assert.Equal(t, 3, compiler.compiled)

	q, err := ps.Get(hash, rc)
	require.NoError(t, err)
	assert.Same(t, p, q)
	assert.Equal(t, 2, ps.RefCount(p))

	require.NoError(t, ps.Put(p))
	require.NoError(t, ps.Put(q))
	assert.ErrorIs(t, ps.Put(p), core.ErrRefcountUnderflow)
	assert.Equal(t, ProgramStats{Hits: 1, Misses: 1, Idle: 1}, ps.Stats())
	assert.NoError(t, ps.Put(nil))

	cached, ok := ps.Lookup(hash)
	assert.True(t, ok)
	assert.Same(t, p, cached)

	require.NoError(t, ps.Shutdown())
	assert.Equal(t, 3, device.Count("DeleteProgram"))
	_, ok = ps.Lookup(hash)
	assert.False(t, ok)
}

func TestProgramIDsAreReused(t *testing.T) {
	device := renderertest.NewDevice(4, 4)
	ps, err := NewProgramSystem(&ProgramSystemConfig{MaxIdlePrograms: 0}, device, &fakeCompiler{})
	require.NoError(t, err)

	rc := litQuadContext()
	first, err := ps.Get(rc.Hash(), rc)
	require.NoError(t, err)
	id := first.ID
	require.NoError(t, ps.Put(first))
	assert.Equal(t, 3, device.Count("DeleteProgram"), "no idle pool")

	rc.Lights = metadata.NewLights()
	second, err := ps.Get(rc.Hash(), rc)
	require.NoError(t, err)
	assert.Equal(t, id, second.ID)
}

func TestProgramSystemRestore(t *testing.T) {
	ps, err := NewProgramSystem(&ProgramSystemConfig{MaxIdlePrograms: 2}, renderertest.NewDevice(4, 4), &fakeCompiler{})
	require.NoError(t, err)
	rc := litQuadContext()
	p, err := ps.Get(rc.Hash(), rc)
	require.NoError(t, err)

	broken := litQuadContext()
	broken.Shader = metadata.NewShader("", "broken")
	faulty, err := ps.Get(broken.Hash(), broken)
	assert.ErrorIs(t, err, core.ErrShaderCompile)
	assert.False(t, faulty.Valid())
	assert.NotEmpty(t, faulty.ErrorLog())

	restored := renderertest.NewDevice(4, 4)
	ps.Restore(restored)
	assert.Same(t, p, mustLookup(t, ps, rc.Hash()))
	assert.True(t, p.Valid())
	assert.NotZero(t, p.Draw.Handle)
	assert.GreaterOrEqual(t, restored.Count("CreateProgram"), 3)
	assert.False(t, faulty.Valid(), "the broken module fails again")
	assert.Equal(t, ProgramStats{Misses: 2, Live: 2}, ps.Stats())
}

func mustLookup(t *testing.T, ps *ProgramSystem, hash string) *metadata.Program {
	t.Helper()
	p, ok := ps.Lookup(hash)
	require.True(t, ok)
	return p
}
