package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocatorReusesLowestFreeSlot(t *testing.T) {
	a := NewIDAllocator(4)
	assert.Equal(t, uint32(0), a.Acquire("a"))
	assert.Equal(t, uint32(1), a.Acquire("b"))
	assert.Equal(t, uint32(2), a.Acquire("c"))

	require.NoError(t, a.Release(1))
	assert.Nil(t, a.Owner(1))
	assert.Equal(t, 2, a.InUse())

	assert.Equal(t, uint32(1), a.Acquire("d"))
	assert.Equal(t, "d", a.Owner(1))
	assert.Equal(t, uint32(3), a.Acquire("e"))
}

func TestIDAllocatorReleaseErrors(t *testing.T) {
	a := NewIDAllocator(1)
	assert.Error(t, a.Release(0))
	id := a.Acquire(struct{}{})
	require.NoError(t, a.Release(id))
	assert.Error(t, a.Release(id))
}

func TestNewObjectIDUnique(t *testing.T) {
	assert.NotEqual(t, NewObjectID(), NewObjectID())
}
