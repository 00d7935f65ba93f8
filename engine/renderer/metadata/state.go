package metadata

import "sync/atomic"

// StateID identifies a state instance. All state categories draw from one
// counter so ids never collide between categories. Zero is never assigned.
type StateID uint32

var lastStateID atomic.Uint32

func nextStateID() StateID {
	return StateID(lastStateID.Add(1))
}

// StateBase is embedded by every render state. The id is assigned on first
// use so states can be built with plain struct literals.
type StateBase struct {
	id StateID
}

func (s *StateBase) StateID() StateID {
	if s.id == 0 {
		s.id = nextStateID()
	}
	return s.id
}

// State is anything that can be bound to a chunk.
type State interface {
	StateID() StateID
}

// Hasher is implemented by states that affect shader generation.
type Hasher interface {
	Hash() string
}

/** @brief Handles to device side resources. Zero means not allocated. */
type BufferHandle uint32
type ProgramHandle uint32
type TextureHandle uint32
type TargetHandle uint32
