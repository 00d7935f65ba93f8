package systems

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type chunkKey struct {
	typeName string
	id       int64
}

type chunkEntry struct {
	chunk *renderer.Chunk
	refs  int
}

/**
 * @brief Registry of chunk types and pool of live chunks. A chunk is shared
 * by every object that asks for the same type and id, and dropped once the
 * last of them releases it.
 */
type ChunkSystem struct {
	device renderer.Device
	types  map[string]*renderer.ChunkType
	chunks map[chunkKey]*chunkEntry
}

func NewChunkSystem(device renderer.Device) *ChunkSystem {
	return &ChunkSystem{
		device: device,
		types:  make(map[string]*renderer.ChunkType),
		chunks: make(map[chunkKey]*chunkEntry),
	}
}

// CreateChunkType registers t under its name. Names are unique.
func (cs *ChunkSystem) CreateChunkType(t renderer.ChunkType) error {
	if t.Name == "" || t.New == nil {
		return fmt.Errorf("chunk type %q needs a name and a constructor", t.Name)
	}
	if _, ok := cs.types[t.Name]; ok {
		return fmt.Errorf("chunk type %q already registered", t.Name)
	}
	cs.types[t.Name] = &t
	return nil
}

func (cs *ChunkSystem) Type(name string) (*renderer.ChunkType, bool) {
	t, ok := cs.types[name]
	return t, ok
}

/**
 * @brief Acquires the chunk of type typeName with the given id, creating it
 * bound to program and state when no object holds it yet.
 */
func (cs *ChunkSystem) Get(id int64, typeName string, program *metadata.Program, state metadata.State) (*renderer.Chunk, error) {
	t, ok := cs.types[typeName]
	if !ok {
		return nil, fmt.Errorf("chunk %q: %w", typeName, core.ErrUnknownChunkType)
	}
	key := chunkKey{typeName: typeName, id: id}
	entry, ok := cs.chunks[key]
	if !ok {
		entry = &chunkEntry{chunk: renderer.NewChunk(id, t, program, state)}
		cs.chunks[key] = entry
	}
	entry.refs++
	return entry.chunk, nil
}

// Put releases one reference to c, destroying it at zero.
func (cs *ChunkSystem) Put(c *renderer.Chunk) error {
	if c == nil {
		return nil
	}
	key := chunkKey{typeName: c.Type.Name, id: c.ID}
	entry, ok := cs.chunks[key]
	if !ok || entry.chunk != c || entry.refs == 0 {
		return fmt.Errorf("chunk %s/%d put: %w", c.Type.Name, c.ID, core.ErrRefcountUnderflow)
	}
	entry.refs--
	if entry.refs == 0 {
		if c.Destroyer != nil {
			c.Destroyer.Destroy(cs.device)
		}
		delete(cs.chunks, key)
	}
	return nil
}

func (cs *ChunkSystem) RefCount(c *renderer.Chunk) int {
	if entry, ok := cs.chunks[chunkKey{typeName: c.Type.Name, id: c.ID}]; ok && entry.chunk == c {
		return entry.refs
	}
	return 0
}

// Live returns the number of chunks held by at least one object.
func (cs *ChunkSystem) Live() int {
	return len(cs.chunks)
}

// Restore drops the device state of every live chunk after a context loss
// and binds fresh behaviour to it.
func (cs *ChunkSystem) Restore(device renderer.Device) {
	cs.device = device
	for _, entry := range cs.chunks {
		if entry.chunk.Restorer != nil {
			entry.chunk.Restorer.Restore(device)
		}
		entry.chunk.Rebind()
	}
}

func (cs *ChunkSystem) Shutdown() error {
	for key, entry := range cs.chunks {
		if entry.chunk.Destroyer != nil {
			entry.chunk.Destroyer.Destroy(cs.device)
		}
		delete(cs.chunks, key)
	}
	return nil
}
